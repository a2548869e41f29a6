package rpmts

// HookPoint names a fixed point in the transaction lifecycle where the
// core invokes registered plugins without interpreting their behaviour
// beyond success/failure (§4.10).
type HookPoint string

const (
	HookTsmPost              HookPoint = "tsm_post"
	HookPsmPre               HookPoint = "psm_pre"
	HookPsmPost              HookPoint = "psm_post"
	HookScriptletPre         HookPoint = "scriptlet_pre"
	HookScriptletPost        HookPoint = "scriptlet_post"
	HookFsmFileInstall       HookPoint = "fsm_file_install"
	HookFsmFileArchiveReader HookPoint = "fsm_file_archive_reader"
)

// PluginHook is a single plugin's handler for a hook point. handled is
// meaningful only at HookFsmFileInstall: true means the plugin supplied
// the file's contents itself, short-circuiting the default install path.
type PluginHook func(ts *TransactionSet, te *Element, data interface{}) (handled bool, err error)

// RegisterPlugin adds hook at point, constructing the plugin registry on
// first use.
func (ts *TransactionSet) RegisterPlugin(point HookPoint, hook PluginHook) {
	if ts.plugins == nil {
		ts.plugins = &pluginRegistry{hooks: make(map[string][]PluginHook)}
	}
	ts.plugins.hooks[string(point)] = append(ts.plugins.hooks[string(point)], hook)
}

// CallHook invokes every plugin registered at point, in registration
// order, for element te. It stops and returns (true, nil) as soon as one
// plugin reports handled, and returns the first error any plugin reports.
func (ts *TransactionSet) CallHook(point HookPoint, te *Element, data interface{}) (bool, error) {
	if ts.plugins == nil {
		return false, nil
	}

	for _, hook := range ts.plugins.hooks[string(point)] {
		handled, err := hook(ts, te, data)
		if err != nil {
			return false, err
		}
		if handled {
			return true, nil
		}
	}
	return false, nil
}
