package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Kairos/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Kairos"
	AppID             = "com.github.tartampluch.go-kairos"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvPrefix         = "KAIROS"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands, Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	CmdServe = "serve"
	CmdNow   = "now"

	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagConfig  = "config"
	FlagWatch   = "watch"
	FlagOffset  = "offset"
	FlagCities  = "cities"
	FlagLang    = "lang"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging to stdout"
	FlagDescConfig  = "Path to a settings file (yaml, json or toml)"
	FlagDescWatch   = "Keep refreshing the board every second"
	FlagDescOffset  = "Preview offset in minutes applied to every city"
	FlagDescCities  = "Comma separated city ids to display"
	FlagDescLang    = "Output language (ISO 639-1)"

	CmdDescRoot  = "World clock with a time-offset slider"
	CmdDescServe = "Run the time lookup API without the graphical interface"
	CmdDescNow   = "Print the selected cities and their local time"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Slider & Gesture
// -----------------------------------------------------------------------------

const (
	// HourWidth is the pixel distance of one slider step.
	HourWidth = 8.0

	// QuarterHour is the size in minutes of every step after the first one.
	QuarterHour = 15

	MinutesPerHour = 60

	// DoubleTapDelay bounds the gap between two touches of a double tap.
	DoubleTapDelay = 300 * time.Millisecond

	// ReturnAnimationDuration is the total length of the return-to-now animation,
	// whatever the number of steps.
	ReturnAnimationDuration = 460 * time.Millisecond

	// RulerVisibleLines is the number of graduation lines drawn around the cursor.
	RulerVisibleLines = 61
	RulerMajorEvery   = 6
	RulerMediumEvery  = 3
)

// -----------------------------------------------------------------------------
// City Board & Directory
// -----------------------------------------------------------------------------

const (
	// ReferenceCityID identifies the synthesized entry of the user's own zone.
	ReferenceCityID = "local"

	FallbackCityName  = "Your City"
	FallbackTimezone  = "UTC"
	ZoneInfoMarker    = "zoneinfo/"
	LocaltimeLink     = "/etc/localtime"
	EnvTZ             = "TZ"
	TimezoneSeparator = "/"

	RecentCitiesLimit  = 10
	RecentCitiesShown  = 6
	SearchResultsLimit = 8

	SelectionFileName = "selection.json"
)

// PopularCityIDs lists the catalog entries suggested before any search.
var PopularCityIDs = []string{
	"new-york", "london", "tokyo", "paris", "sydney",
	"dubai", "singapore", "mumbai", "los-angeles", "berlin",
	"toronto", "shanghai", "beijing", "hong-kong", "bangkok",
}

// DefaultCityIDs is the selection used on first launch and when storage is corrupt.
var DefaultCityIDs = []string{"new-york", "london", "tokyo"}

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 520
	MainWindowHeight    = 640
	SettingsWindowWidth = 420
	AddCityWindowWidth  = 380
	AddCityWindowHeight = 460
	SliderHeight        = 96
	RulerMajorHeight    = 60
	RulerMediumHeight   = 50
	RulerRegularHeight  = 40

	TimeFormatDisplay = "15:04"
	TimeFormatSeconds = "15:04:05"
	DateFormatDisplay = "Mon 02 Jan"

	// Preference Keys
	PrefSelectedCities = "selectedCities"
	PrefRecentCities   = "recentCities"
	PrefLanguage       = "language"
	PrefServerPort     = "server_port"
	PrefServerEnabled  = "server_enabled"
	PrefLastRun        = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinAddCity     = "win_add_city"
	TKeyWinSettings    = "win_settings"
	TKeyYourTime       = "lbl_your_time"
	TKeyCurrentTime    = "lbl_current_time"
	TKeySameTime       = "diff_same_time"
	TKeyAhead          = "diff_ahead"  // Requires Span
	TKeyBehind         = "diff_behind" // Requires Span
	TKeyBtnAddCity     = "btn_add_city"
	TKeyBtnRemove      = "btn_remove"
	TKeyBtnMoveUp      = "btn_move_up"
	TKeyBtnMoveDown    = "btn_move_down"
	TKeyBtnExportSlot  = "btn_export_slot"
	TKeyBtnNow         = "btn_back_to_now"
	TKeyBtnSettings    = "btn_settings"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblSearch      = "lbl_search"
	TKeyLblPopular     = "lbl_popular"
	TKeyLblRecent      = "lbl_recent"
	TKeyLblNoResults   = "lbl_no_results"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblPort        = "lbl_server_port"
	TKeyLblServer      = "lbl_server_enabled"
	TKeyHelpPort       = "help_port"
	TKeyLblFooter      = "lbl_footer"
	TKeyNotifDirectory = "notif_directory_failed"
	TKeyNotifExported  = "notif_slot_exported"
	TKeyNotifServerOff = "notif_server_off"
	TKeyInvalidZone    = "lbl_invalid_zone"
	TKeySlotSummary    = "slot_summary" // Requires Count
	TKeyErrPortReq     = "err_port_required"
	TKeyErrPortNum     = "err_port_number"
	TKeyErrPortRange   = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18081"
	DefaultLanguage = "en"
	DefaultBindAddr = LocalhostBindAddr
	TickInterval    = 1 * time.Second
	LocationCacheSz = 1024
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Kairos//World Clock//EN"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalDomain    = "kairos"
	SlotDuration  = 30 * time.Minute
	FormatSlotUID = "%d@%s"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDescription = "DESCRIPTION"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	FallbackSlotSummary = "Meeting slot (%d cities)"
	FormatSlotLine      = "%s, %s: %s"

	// vCard properties used by the team directory.
	VCardFN  = "FN"
	VCardTZ  = "TZ"
	VCardUID = "UID"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAttempts       = 4
	RetryDelay          = 500 * time.Millisecond
	RetryMaxDelay       = 10 * time.Second
	RetryAfterSeconds   = "10"
	MaxHTTPResponseSize = 8 * 1024 * 1024 // 8MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"
	MinPort             = 1
	MaxPort             = 65535

	RouteTime     = "/time"
	RouteAPITime  = "/api/time"
	RouteCities   = "/api/cities"
	RouteSlot     = "/slot.ics"
	RouteHealth   = "/health"
	QueryTimezone = "timezone"
	QueryOffset   = "offset"

	// MaxQueryOffsetMinutes bounds the offset query parameter to one leap year
	// either way.
	MaxQueryOffsetMinutes = 366 * 24 * MinutesPerHour
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"
	CacheControlNoStore = "no-store"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidTimezone = "invalid timezone"
	ErrDirectoryLoad   = "city directory failed to load"
	ErrStorageCorrupt  = "stored selection is corrupt"
	ErrReferenceCity   = "the reference city cannot be removed or moved"
	ErrCityNotFound    = "city not found in selection"
	ErrCatalogDecode   = "failed to decode city catalog"
	ErrSelectionSave   = "failed to persist city selection"
	ErrSelectionLoad   = "failed to restore city selection"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrServerDown      = "time server is not running"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrUnexpectedHTTP  = "server returned unexpected status"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrSettingsLoad    = "failed to load settings"
	ErrSettingsInvalid = "invalid settings"
	ErrUnknownCity     = "unknown city id"
	ErrOffsetRange     = "offset must be within one year of now"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgTimezoneRequired = "Timezone parameter is required"
	HTTPMsgInvalidTimezone  = "Invalid timezone"
	HTTPMsgInvalidOffset    = "Invalid offset"
	HTTPMsgInternalErr      = "Failed to get time"
	HTTPMsgNotFound         = "endpoint not found"
	HTTPMsgMethodNotAll     = "method not allowed"
	HTTPMsgCitiesFailed     = "Failed to fetch cities data"
	HTTPMsgSlotPending      = "No time slot exported yet, please try again shortly."
	HTTPMsgHealthy          = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackInvalidZone = "--:--"

	FormatSpanHours = "%dh"

	FormatLabelHourMin = "%s%dH %dM"
	FormatLabelHour    = "%s%dH"
	FormatLabelMin     = "%s%dM"

	TitleStartupError = "Startup Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgWorkerStart     = "Ticker worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgSlotUpdated     = "Exported slot cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgCatalogLoaded   = "City catalog loaded"
	MsgCatalogSkip     = "Skipping invalid catalog entry"
	MsgCardSkipped     = "Skipping contact without a usable time zone"
	MsgFetchRetry      = "Retrying catalog download"
	MsgCityAdded       = "City added"
	MsgCityRemoved     = "City removed"
	MsgCityMoved       = "City moved"
	MsgSelectionReset  = "Stored selection unusable, falling back to defaults"
	MsgRefusedRef      = "Refused to mutate the reference city"
	MsgAnimStart       = "Returning offset to now"
	MsgAnimCancelled   = "Return animation cancelled by new gesture"
	MsgGestureTakeover = "Pointer source took over gesture"
	MsgSettingsReload  = "Settings reloaded"
	MsgSettingsFailed  = "Settings reload failed"
	MsgLookupServed    = "Time lookup served"
	MsgZoneUnresolved  = "Reference zone could not be detected"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyCityID    = "city_id"
	LogKeyTimezone  = "timezone"
	LogKeyIndex     = "index"
	LogKeyOffset    = "offset_minutes"
	LogKeySteps     = "steps"
	LogKeyDelay     = "step_delay"
	LogKeySource    = "source"
	LogKeyCount     = "count"
	LogKeyAttempt   = "attempt"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI        = "ui"
	CompUISet     = "ui_settings"
	CompEngine    = "engine"
	CompGesture   = "gesture"
	CompBoard     = "board"
	CompDirectory = "directory"
	CompStore     = "store"
	CompServer    = "server"
	CompWorker    = "worker"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompSettings  = "settings"
	CompDisplay   = "display"
)
