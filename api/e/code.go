package e

const (
	Success          = "2000"
	Accepted         = "2020"
	SystemError      = "5000"
	BadRequest       = "4000"
	ConnectFailed    = "4001"
	NotEnabled       = "4002"
	Unauthorized     = "4010"
	TokenInvalid     = "4011"
	TokenExpired     = "4012"
	PermissionDenied = "4030"
	NotFound         = "4040"
	InvalidState     = "4090"
	CapacityExceeded = "4091"
	MmioNotReady     = "4092"
	PoolNotFound     = "4220"
	CapsNotFound     = "4221"
	TemplateNotFound = "4222"
	Timeout          = "5040"
	FAILED           = "9999"
)
