package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Rooms           Category = "Rooms"
	Events          Category = "Events"
	Broker          Category = "Broker"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Events
	Join      SubCategory = "Join"
	Dispatch  SubCategory = "Dispatch"
	Broadcast SubCategory = "Broadcast"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomID       ExtraKey = "RoomID"
	UserID       ExtraKey = "UserID"
	EventName    ExtraKey = "EventName"
	ErrorMessage ExtraKey = "ErrorMessage"
)
