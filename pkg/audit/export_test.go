package audit

var WithClock = withClock
