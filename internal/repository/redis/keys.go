package redis

import "fmt"

const ns = "valetgo:v1"

func KeyLocationSchedules(locationID int64) string {
	return fmt.Sprintf("%s:location:%d:schedules", ns, locationID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemBooking(userID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%d:%s", ns, userID, idemKey)
}

func ChannelBookingUpdates() string {
	return ns + ":bookings:updates"
}
