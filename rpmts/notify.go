package rpmts

// NotifyStyle selects what CallbackKey the notify callback receives for an
// element: 0 means the header reference, anything else means the element
// itself.
type NotifyStyle int

const (
	NotifyStyleHeader  NotifyStyle = 0
	NotifyStyleElement NotifyStyle = 1
)

// CallbackType is the progress event kind passed to NotifyFunc, e.g.
// "install start", "install progress", "uninstall start". The core treats
// these as opaque integers owned by the (external) runner.
type CallbackType int

// NotifyFunc mirrors rpmCallbackFunction: (opaque key, event kind, amount,
// total, per-element key, user data) -> opaque result.
type NotifyFunc func(key interface{}, what CallbackType, amount, total int64, elementKey interface{}, data interface{}) interface{}

// Notify invokes the set's notify callback, if any, deriving the per-element
// key from NotifyStyle: the element's Header when style is
// NotifyStyleHeader, the element itself otherwise.
func (ts *TransactionSet) Notify(te *Element, what CallbackType, amount, total int64) interface{} {
	if ts == nil || ts.notifyFn == nil {
		return nil
	}

	var arg interface{}
	var key interface{}
	if te != nil {
		if ts.notifyStyle == NotifyStyleHeader {
			arg = te.Header
		} else {
			arg = te
		}
		key = te.Key
	}

	return ts.notifyFn(arg, what, amount, total, key, ts.notifyData)
}

// NotifyChange invokes the set's change callback, if any.
func (ts *TransactionSet) NotifyChange(event ChangeEvent, te, other *Element) int {
	if ts == nil || ts.changeFn == nil {
		return 0
	}
	return ts.changeFn(event, te, other, ts.changeData)
}

// SetNotifyCallback installs the progress notification callback and its
// user data.
func (ts *TransactionSet) SetNotifyCallback(fn NotifyFunc, data interface{}) {
	ts.notifyFn = fn
	ts.notifyData = data
}

// SetNotifyStyle selects the per-element key encoding passed to the notify
// callback.
func (ts *TransactionSet) SetNotifyStyle(style NotifyStyle) {
	ts.notifyStyle = style
}

// NotifyStyle returns the currently configured notify style.
func (ts *TransactionSet) NotifyStyle() NotifyStyle {
	return ts.notifyStyle
}

// SetChangeCallback installs the membership-change callback and its user
// data. Passing a nil fn disables change notification, which Free does
// before emptying the set so destruction doesn't fire spurious DEL events
// to a caller who may have already torn down their own state.
func (ts *TransactionSet) SetChangeCallback(fn ChangeFunc, data interface{}) {
	ts.changeFn = fn
	ts.changeData = data
}
