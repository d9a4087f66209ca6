package pdu

import "fmt"

// Status is an SMPP command_status value: zero on requests, a result code
// on responses.
type Status uint32

// Status codes this client recognizes, named after the SMPP 3.4 ESME
// status table. Only the subset this client acts on or logs by name is
// enumerated; unrecognized codes still round-trip and stringify via the
// numeric fallback in Error.
const (
	StatusOK            Status = 0x00000000
	StatusInvMsgLen     Status = 0x00000001
	StatusInvCmdLen     Status = 0x00000002
	StatusInvCmdID      Status = 0x00000003
	StatusInvBnd        Status = 0x00000004
	StatusAlyBnd        Status = 0x00000005
	StatusSysErr        Status = 0x00000008
	StatusInvSrcAdr     Status = 0x0000000A
	StatusInvDstAdr     Status = 0x0000000B
	StatusInvMsgID      Status = 0x0000000C
	StatusBindFail      Status = 0x0000000D
	StatusInvPaswd      Status = 0x0000000E
	StatusInvSysID      Status = 0x0000000F
	StatusMsgQFul       Status = 0x00000014
	StatusInvSerTyp     Status = 0x00000015
	StatusThrottled     Status = 0x00000058
	StatusInvSched      Status = 0x00000061
	StatusInvExpiry     Status = 0x00000062
	StatusSysErrGeneric Status = 0x000000FF
)

var statusNames = map[Status]string{
	StatusOK:            "OK",
	StatusInvMsgLen:     "invalid message length",
	StatusInvCmdLen:     "invalid command length",
	StatusInvCmdID:      "invalid command id",
	StatusInvBnd:        "incorrect bind status for given command",
	StatusAlyBnd:        "ESME already in bound state",
	StatusSysErr:        "system error",
	StatusInvSrcAdr:     "invalid source address",
	StatusInvDstAdr:     "invalid destination address",
	StatusInvMsgID:      "invalid message id",
	StatusBindFail:      "bind failed",
	StatusInvPaswd:      "invalid password",
	StatusInvSysID:      "invalid system id",
	StatusMsgQFul:       "message queue full",
	StatusInvSerTyp:     "invalid service type",
	StatusThrottled:     "throttling error",
	StatusInvSched:      "invalid scheduled delivery time",
	StatusInvExpiry:     "invalid message validity period",
	StatusSysErrGeneric: "unknown error",
}

// Error implements the error interface so a non-zero Status can be
// returned and wrapped like any other Go error.
func (s Status) Error() string {
	if s == StatusOK {
		return "OK"
	}
	if name, ok := statusNames[s]; ok {
		return fmt.Sprintf("%s (0x%08X)", name, uint32(s))
	}
	return fmt.Sprintf("unknown status (0x%08X)", uint32(s))
}

// IsThrottle reports whether s is one of the two status codes treated as
// a throttle signal: ESME_RTHROTTLED and ESME_RMSGQFUL. Both feed the
// same throttle-handler feedback loop rather than being split apart.
func (s Status) IsThrottle() bool {
	return s == StatusThrottled || s == StatusMsgQFul
}
