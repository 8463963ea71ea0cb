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
var UserAgent = "Go-Listings/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Listings"
	AppID             = "com.github.tartampluch.go-listings"
	KeyringService    = "com.github.tartampluch.go-listings"
	KeyringUser       = "feed-api-key"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvFileName       = ".env"
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
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion     = "version"
	FlagDebug       = "debug"
	FlagDate        = "date"
	FlagVenue       = "venue"
	FlagTag         = "tag"
	FlagFilmOnly    = "film-only"
	FlagOutput      = "output"
	FlagInteractive = "interactive"
	FlagServe       = "serve"
	FlagStoreKey    = "store-key"

	FlagDescVersion     = "Show application version and exit"
	FlagDescDebug       = "Enable debug logging to stderr"
	FlagDescDate        = "Listings date (YYYY-MM-DD), defaults to today"
	FlagDescVenue       = "Restrict listings to one venue"
	FlagDescTag         = "Restrict listings to rows whose notes match a tag"
	FlagDescFilmOnly    = "Only show screenings projected on film (35mm, 70mm, 16mm)"
	FlagDescOutput      = "Output format: text, json or ics"
	FlagDescInteractive = "Browse dates interactively from the terminal"
	FlagDescServe       = "Serve listings over HTTP"
	FlagDescStoreKey    = "Store the feed API key in the OS keyring and exit"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"

	OutputText = "text"
	OutputJSON = "json"
	OutputICS  = "ics"
)

// Interactive commands.
const (
	CmdNext     = "n"
	CmdNextLong = "next"
	CmdPrev     = "p"
	CmdPrevLong = "prev"
	CmdToday    = "t"
	CmdTodayLng = "today"
	CmdDate     = "d"
	CmdDateLong = "date"
	CmdFilm     = "f"
	CmdFilmLong = "film"
	CmdQuit     = "q"
	CmdQuitLong = "quit"
	PromptText  = "> "
)

// -----------------------------------------------------------------------------
// Environment Variables
// -----------------------------------------------------------------------------

const (
	EnvFeedURL     = "LISTINGS_FEED_URL"
	EnvFeedShape   = "LISTINGS_FEED_SHAPE"
	EnvAPIKey      = "LISTINGS_API_KEY"
	EnvLockedVenue = "LISTINGS_LOCKED_VENUE"
	EnvLockedTag   = "LISTINGS_LOCKED_TAG"
	EnvLanguage    = "LISTINGS_LANGUAGE"
	EnvPort        = "LISTINGS_PORT"
)

// SupportedLanguages defines the list of available languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyFullDate      = "full_date"    // Requires Weekday, Month, Day (ordinal), Year
	TKeyNoListings    = "no_listings"  // Shown when a date has no screenings
	TKeyUnavailable   = "unavailable"  // Shown when the feed cannot be loaded
	TKeyLoading       = "loading"      // Shown while a request is in flight
	TKeyFilmOnlyOn    = "film_only_on" // Status line when film-only filter is active
	TKeyTimesNone     = "times_none"   // Card placeholder when no time is listed
	TKeyOrdinalOne    = "ordinal_one"  // Day 1 only; French writes "1er" but "21"
	TKeyOrdinalFirst  = "ordinal_first"
	TKeyOrdinalSecond = "ordinal_second"
	TKeyOrdinalThird  = "ordinal_third"
	TKeyOrdinalOther  = "ordinal_other"

	// TKeyWeekdayPrefix and TKeyMonthPrefix are completed with the lower-cased
	// English name, e.g. "weekday_monday", "month_november".
	TKeyWeekdayPrefix = "weekday_"
	TKeyMonthPrefix   = "month_"
)

// -----------------------------------------------------------------------------
// Feed Layout & Business Logic
// -----------------------------------------------------------------------------

const (
	FeedShapeSheet   = "sheet"
	FeedShapeGrouped = "grouped"

	DefaultFeedShape = FeedShapeSheet
	DefaultPort      = "18081"
	DefaultLanguage  = "en"

	// Positional columns of a spreadsheet row.
	ColDate           = 0
	ColVenue          = 1
	ColTitle          = 2
	ColDirector       = 3
	ColRuntime        = 4
	ColFormat         = 5
	ColTimes          = 6
	ColYear           = 7
	ColNotes          = 8
	ColBlurb          = 9
	ColProgramme      = 10
	ColScreeningNotes = 11
	RowWidth          = 12

	// Programme sub-field delimiters.
	ProgrammeEntrySep = "||"
	ProgrammeFieldSep = "|"

	TimesSeparator   = ","
	DetailsSeparator = ", "
	RuntimeSuffix    = " min"
	RuntimeMarker    = "min"

	// NoTimeValue sorts films without a parsable time after every valid time.
	NoTimeValue = 9999

	// Spreadsheet serial times are fractions of a day; anything at or above
	// MaxSerialTime is treated as ordinary text.
	MaxSerialTime  = 2.0
	MinutesPerDay  = 24 * 60
	MinutesPerHour = 60

	QueryParamKey  = "key"
	QueryParamDate = "date"

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s@%s"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Listings//Engine//EN"
	ICalCalName = "Listings"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "golistings"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropDescription = "DESCRIPTION"
	PropLocation    = "LOCATION"
	PropURL         = "URL"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	DateFormatISO  = "2006-01-02"
	FormatClock    = "%02d:%02d"
	FormatHeadline = "%s\n"

	MinPort = 1
	MaxPort = 65535
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	LoadTimeout         = 45 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 60 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteListings       = "/listings"
	RouteCalendar       = "/listings.ics"
	AddrSeparator       = ":"

	ParamDate     = "date"
	ParamVenue    = "venue"
	ParamTag      = "tag"
	ParamFilmOnly = "film_only"

	// ServerCacheTTL bounds how long a rendered response is reused for an
	// identical request before the feed is fetched again.
	ServerCacheTTL = 1 * time.Minute

	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadDate      = "Invalid date, expected YYYY-MM-DD"
	HTTPMsgBadFilmOnly  = "Invalid film_only value, expected a boolean"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderETag         = "ETag"
	HeaderAllow        = "Allow"
	HeaderXContentType = "X-Content-Type-Options"
	HeaderUserAgent    = "User-Agent"
	HeaderIfNoneMatch  = "If-None-Match"
	HeaderAccept       = "Accept"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrFeedURLEmpty    = "configuration error: feed URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrLoaderMissing   = "internal error: listings loader is not initialized"
	ErrShapeUnsupport  = "configuration error: unsupported feed shape"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrFeedLoad        = "failed to load listings feed"
	ErrFeedMalformed   = "malformed listings feed"
	ErrFeedValues      = "feed has no values table"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrEncodeResp      = "failed to encode response"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrKeyringStore    = "failed to store API key in keyring"
	ErrEnvFile         = "failed to load env file"
	ErrOutputUnsupport = "unsupported output format"
	ErrReadInput       = "failed to read interactive input"
	ErrStaleRequest    = "request superseded by a newer navigation"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackNoListings  = "No listings for this date."
	FallbackUnavailable = "Unable to load listings."
	FallbackLoading     = "Loading..."

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgLoadStarted    = "Loading listings"
	MsgLoadFinished   = "Listings loaded"
	MsgLoadFailed     = "Listings load failed"
	MsgStaleDiscarded = "Discarding stale listings response"
	MsgRowSkipped     = "Skipping row"
	MsgFieldDiverged  = "Later row diverges from first-seen film details"
	MsgAppStop        = "Application stopped gracefully"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgEnvFileMissing = "No env file found, using process environment"
	MsgKeyringMiss    = "API key not found in keyring"
	MsgKeyStored      = "API key stored in keyring"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgUnknownCommand = "Unknown command"
	MsgCacheUpdated   = "Response cache updated"
	MsgCacheHit       = "Serving cached response"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyShape      = "shape"
	LogKeyDate       = "date"
	LogKeyVenue      = "venue"
	LogKeyTitle      = "title"
	LogKeyField      = "field"
	LogKeyReason     = "reason"
	LogKeyGeneration = "generation"
	LogKeyCurrent    = "current"
	LogKeyRows       = "rows_total"
	LogKeyKept       = "rows_kept"
	LogKeyVenues     = "venues"
	LogKeyFilms      = "films"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyValue      = "value"
	LogKeyStats      = "stats"
	LogKeyDuration   = "duration_ms"
	LogKeyCommand    = "command"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyBuilt   = "built"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// Row skip reasons, logged at debug level.
const (
	SkipDate     = "date_mismatch"
	SkipVenue    = "no_venue"
	SkipLocked   = "locked_venue"
	SkipTag      = "tag_mismatch"
	SkipFilmOnly = "not_film"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompNavigator = "navigator"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompConfig    = "config"
)
