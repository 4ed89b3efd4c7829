package render

import (
	"go.uber.org/zap"

	"vkgraph/src/render/native"
)

// DebugMessenger forwards validation messages to a callback for as long as
// it is alive. A Device built with a messenger keeps it alive, so messages
// about the device's own teardown are still delivered.
type DebugMessenger struct {
	object[DebugMessengerProperties]
	instance *Instance
}

type DebugCallback func(severity native.DebugSeverityFlags, typ native.DebugTypeFlags, message string)

type DebugMessengerProperties struct {
	Severity native.DebugSeverityFlags
	Type     native.DebugTypeFlags
	Callback DebugCallback
}

// DefaultDebugMessengerProperties reports warnings and errors of every type
// to the package logger. These are convenience defaults.
func DefaultDebugMessengerProperties() DebugMessengerProperties {
	return DebugMessengerProperties{
		Severity: native.DebugSeverityWarning | native.DebugSeverityError,
		Type:     native.DebugTypeGeneral | native.DebugTypeValidation | native.DebugTypePerformance,
		Callback: LogDebugMessage,
	}
}

func (p DebugMessengerProperties) Clone() DebugMessengerProperties { return p }

func (p DebugMessengerProperties) CreateInfo() native.DebugMessengerCreateInfo {
	cb := p.Callback
	if cb == nil {
		cb = LogDebugMessage
	}
	return native.DebugMessengerCreateInfo{
		Severity: p.Severity,
		Type:     p.Type,
		Callback: cb,
	}
}

func DebugMessengerPropertiesFromCreateInfo(info *native.DebugMessengerCreateInfo) DebugMessengerProperties {
	return DebugMessengerProperties{
		Severity: info.Severity,
		Type:     info.Type,
		Callback: info.Callback,
	}
}

// LogDebugMessage writes a driver message to Logger at a matching level.
func LogDebugMessage(severity native.DebugSeverityFlags, typ native.DebugTypeFlags, message string) {
	l := Logger().With(zap.Uint32("type", uint32(typ)))
	switch {
	case severity&native.DebugSeverityError != 0:
		l.Error(message)
	case severity&native.DebugSeverityWarning != 0:
		l.Warn(message)
	case severity&native.DebugSeverityInfo != 0:
		l.Info(message)
	default:
		l.Debug(message)
	}
}

func NewDebugMessenger(instance *Instance, props DebugMessengerProperties) (*DebugMessenger, error) {
	m := &DebugMessenger{instance: instance}
	err := build(&m.object, KindDebugMessenger, props, nil,
		func() (native.Handle, native.Result) {
			info := props.CreateInfo()
			return instance.drv.CreateDebugMessenger(instance.Handle(), &info)
		},
		destroyed(func(raw native.Handle) { instance.drv.DestroyDebugMessenger(instance.Handle(), raw) }),
		need("instance", instance),
	)
	if err != nil {
		return nil, err
	}
	return track(m), nil
}

func (m *DebugMessenger) Retain() *DebugMessenger { m.retain(); return m }

func (m *DebugMessenger) Instance() *Instance { return m.instance }
