package domain

import "fmt"

// ErrorCode identifies which branch of the error taxonomy an Error belongs to.
type ErrorCode string

const (
	ErrorCodeConfigError               ErrorCode = "CONFIG_ERROR"
	ErrorCodePermissionDenied          ErrorCode = "PERMISSION_DENIED"
	ErrorCodeIllegalImport             ErrorCode = "ILLEGAL_IMPORT"
	ErrorCodeUnknownComponent          ErrorCode = "UNKNOWN_COMPONENT"
	ErrorCodeTypeMismatch              ErrorCode = "TYPE_MISMATCH"
	ErrorCodeRequiredChildMissing      ErrorCode = "REQUIRED_CHILD_MISSING"
	ErrorCodeSingletonViolation        ErrorCode = "SINGLETON_VIOLATION"
	ErrorCodeUnexpectedChild           ErrorCode = "UNEXPECTED_CHILD"
	ErrorCodeDuplicateWidgetID         ErrorCode = "DUPLICATE_WIDGET_ID"
	ErrorCodeInvalidAction             ErrorCode = "INVALID_ACTION"
	ErrorCodeBackendError              ErrorCode = "BACKEND_ERROR"
	ErrorCodeShortcutRegistrationError ErrorCode = "SHORTCUT_REGISTRATION_ERROR"
	ErrorCodeDownloadError             ErrorCode = "DOWNLOAD_ERROR"
)

// Error is the common error shape across the plugin host, tagged by Code so
// callers can branch on the error taxonomy without string matching.
type Error struct {
	Code     ErrorCode
	PluginID PluginID
	Op       string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.PluginID != "" {
		return fmt.Sprintf("%s: plugin %s %s: %s", e.Code, e.PluginID, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, &Error{Code: X}) style matching on Code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newErr(code ErrorCode, pluginID PluginID, op, message string, cause error) *Error {
	return &Error{Code: code, PluginID: pluginID, Op: op, Message: message, Err: cause}
}

func NewConfigError(op, message string, cause error) *Error {
	return newErr(ErrorCodeConfigError, "", op, message, cause)
}

func NewPermissionDenied(pluginID PluginID, op string) *Error {
	return newErr(ErrorCodePermissionDenied, pluginID, op, "operation requires a permission the plugin did not declare", nil)
}

func NewIllegalImport(pluginID PluginID, specifier string) *Error {
	return newErr(ErrorCodeIllegalImport, pluginID, "module_resolve", fmt.Sprintf("illegal import specifier %q", specifier), nil)
}

func NewUnknownComponent(pluginID PluginID, widgetType string) *Error {
	return newErr(ErrorCodeUnknownComponent, pluginID, "replace_view", fmt.Sprintf("unknown component %q", widgetType), nil)
}

func NewTypeMismatch(pluginID PluginID, property string) *Error {
	return newErr(ErrorCodeTypeMismatch, pluginID, "replace_view", fmt.Sprintf("property %q does not match its declared type", property), nil)
}

func NewRequiredChildMissing(pluginID PluginID, widgetType, slot string) *Error {
	return newErr(ErrorCodeRequiredChildMissing, pluginID, "replace_view", fmt.Sprintf("component %q missing required child slot %q", widgetType, slot), nil)
}

func NewSingletonViolation(pluginID PluginID, componentType string) *Error {
	return newErr(ErrorCodeSingletonViolation, pluginID, "replace_view", fmt.Sprintf("duplicate singleton component %q", componentType), nil)
}

func NewUnexpectedChild(pluginID PluginID, parentType, childType string) *Error {
	return newErr(ErrorCodeUnexpectedChild, pluginID, "replace_view", fmt.Sprintf("component %q is not a valid child of %q", childType, parentType), nil)
}

func NewDuplicateWidgetID(pluginID PluginID, widgetID uint32) *Error {
	return newErr(ErrorCodeDuplicateWidgetID, pluginID, "replace_view", fmt.Sprintf("duplicate widget_id %d", widgetID), nil)
}

func NewInvalidAction(pluginID PluginID, entrypointID, actionID string) *Error {
	return newErr(ErrorCodeInvalidAction, pluginID, "run_action", fmt.Sprintf("no action %q on entrypoint %q", actionID, entrypointID), nil)
}

func NewBackendError(op string, cause error) *Error {
	return newErr(ErrorCodeBackendError, "", op, "backend operation failed", cause)
}

func NewShortcutRegistrationError(op string, cause error) *Error {
	return newErr(ErrorCodeShortcutRegistrationError, "", op, "OS refused to register the shortcut", cause)
}

func NewDownloadError(pluginID PluginID, cause error) *Error {
	return newErr(ErrorCodeDownloadError, pluginID, "download_plugin", "plugin download failed", cause)
}
