package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Presence        Category = "Presence"
	Chat            Category = "Chat"
	Meetings        Category = "Meetings"
	RabbitMQ        Category = "RabbitMQ"
	Mongo           Category = "Mongo"
	RequestResponse Category = "RequestResponse"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Presence
	Join       SubCategory = "Join"
	Leave      SubCategory = "Leave"
	Disconnect SubCategory = "Disconnect"
	Relay      SubCategory = "Relay"
	Audit      SubCategory = "Audit"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	MeetingID    ExtraKey = "MeetingId"
	UserID       ExtraKey = "UserId"
	ConnectionID ExtraKey = "ConnectionId"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
