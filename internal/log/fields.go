package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldKind          = "kind"
	FieldCategory      = "category"
	FieldSessionState  = "session_state"
	FieldIdentity      = "identity"
	FieldEmail         = "email"
	FieldSortOrder     = "sort_order"
	FieldStatusCode    = "status_code"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldCount         = "count"
	FieldDarkMode      = "dark_mode"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentConfig   = "config"
	ComponentGateway  = "gateway"
	ComponentIdentity = "identity"
	ComponentPrefs    = "prefs"
	ComponentSession  = "session"
	ComponentStore    = "store"
)

// Operations defines standard operation names
const (
	OpLoad    = "load"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpRemove  = "remove"
	OpSort    = "sort"
	OpTheme   = "theme"
	OpLogin   = "login"
	OpSignup  = "signup"
	OpLogout  = "logout"
	OpResume  = "resume"
	OpStartup = "startup"
)
