package websocket

// Inbound event names (client -> server).
const (
	EventRegisterStudent = "register_student"
	EventRegisterTeacher = "register_teacher"
	EventScreenUpdate    = "screen_update"
	EventProcessUpdate   = "process_update"
	EventSendMessage     = "send_message"
	EventLockScreens     = "lock_screens"
	EventUnlockScreens   = "unlock_screens"
	EventCreatePoll      = "create_poll"
	EventPollResponse    = "poll_response"
	EventShutdownServer  = "shutdown_server"
)

// Outbound event names (server -> client).
const (
	EventRegistered          = "registered"
	EventStudentConnected    = "student_connected"
	EventStudentDisconnected = "student_disconnected"
	EventStudentList         = "student_list"
	EventScreenData          = "screen_data"
	EventReceiveMessage      = "receive_message"
	EventScreenLock          = "screen_lock"
	EventScreenUnlock        = "screen_unlock"
	EventShowPoll            = "show_poll"
	EventPollResults         = "poll_results"
	EventViolationAlert      = "violation_alert"
	EventRateLimited         = "rate_limited"
	EventError               = "error"
)
