package logger

// Most non-error log messages are given a message ID that can be used to set
// the log level for that message. Errors do not get a message ID because you
// cannot turn errors into non-errors (otherwise the build would incorrectly
// succeed).
type MsgID = uint8

const (
	MsgID_None MsgID = iota

	// Selection
	MsgID_Selection_UnknownFeature
	MsgID_Selection_UnknownLanguage
	MsgID_Selection_IgnoredFeatureSelector
	MsgID_Selection_DuplicateLabel

	// Build
	MsgID_Build_DynamicPublicPath
	MsgID_Build_WorkerWarning

	MsgID_END // Keep this at the end (used only for tests)
)

func StringToMsgIDs(str string, logLevel LogLevel, overrides map[MsgID]LogLevel) {
	switch str {
	case "unknown-feature":
		overrides[MsgID_Selection_UnknownFeature] = logLevel
	case "unknown-language":
		overrides[MsgID_Selection_UnknownLanguage] = logLevel
	case "ignored-feature-selector":
		overrides[MsgID_Selection_IgnoredFeatureSelector] = logLevel
	case "duplicate-label":
		overrides[MsgID_Selection_DuplicateLabel] = logLevel
	case "dynamic-public-path":
		overrides[MsgID_Build_DynamicPublicPath] = logLevel
	case "worker-warning":
		overrides[MsgID_Build_WorkerWarning] = logLevel

	// Message groups
	case "selection":
		overrides[MsgID_Selection_UnknownFeature] = logLevel
		overrides[MsgID_Selection_UnknownLanguage] = logLevel
		overrides[MsgID_Selection_IgnoredFeatureSelector] = logLevel
		overrides[MsgID_Selection_DuplicateLabel] = logLevel

	default:
		// Ignore invalid entries since this message id may have
		// been renamed/removed since when this code was written
	}
}

func MsgIDToString(id MsgID) string {
	switch id {
	case MsgID_Selection_UnknownFeature:
		return "unknown-feature"
	case MsgID_Selection_UnknownLanguage:
		return "unknown-language"
	case MsgID_Selection_IgnoredFeatureSelector:
		return "ignored-feature-selector"
	case MsgID_Selection_DuplicateLabel:
		return "duplicate-label"
	case MsgID_Build_DynamicPublicPath:
		return "dynamic-public-path"
	case MsgID_Build_WorkerWarning:
		return "worker-warning"
	}

	return ""
}
