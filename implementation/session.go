package implementation

import (
	contextpkg "context"
	"sync"
	"sync/atomic"

	"github.com/tliron/glsp"

	"github.com/tminor/lspytype/config"
	"github.com/tminor/lspytype/python"
	"github.com/tminor/lspytype/widget"
)

const (
	MethodCaretMoved = "lspytype/caretMoved"
	MethodWidget     = "lspytype/widget"
	MethodStatusBar  = "lspytype/statusBar"
)

// WidgetStatus is what the editor renders for the widget.
type WidgetStatus struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Tooltip   string `json:"tooltip"`
	Alignment string `json:"alignment"`
}

func statusOf(w *widget.Widget) *WidgetStatus {
	return &WidgetStatus{
		ID:        w.ID(),
		Text:      w.Text(),
		Tooltip:   w.Tooltip(),
		Alignment: w.Alignment().String(),
	}
}

var settings atomic.Pointer[config.Config]

// Configure sets the configuration used by documents opened from now on.
func Configure(configuration *config.Config) {
	settings.Store(configuration)
}

func currentSettings() *config.Config {
	if configuration := settings.Load(); configuration != nil {
		return configuration
	}
	return config.Default()
}

func newEngine() *python.Engine {
	return python.NewEngine(currentSettings().MaxInferenceDepth)
}

var factory = widget.NewFactory()

var carets = &caretSource{}

// session is the widget of the connection that initialized last.
var session struct {
	lock   sync.Mutex
	widget *widget.Widget
	loop   *UILoop
}

func createWidget(notify glsp.NotifyFunc) {
	session.lock.Lock()
	defer session.lock.Unlock()
	_disposeWidget()

	loop := NewUILoop()
	bar := &statusBar{notify: notify}
	w := factory.Create(widget.Host{
		Documents:  parsedDocuments{},
		Inferrer:   newEngine(),
		Carets:     carets,
		StatusBar:  bar,
		Dispatcher: loop,
	})
	bar.widget.Store(w)
	session.widget = w
	session.loop = loop
}

func disposeWidget() {
	session.lock.Lock()
	defer session.lock.Unlock()
	_disposeWidget()
}

func _disposeWidget() {
	if session.widget != nil {
		factory.Dispose(session.widget)
		session.widget = nil
	}
	if session.loop != nil {
		session.loop.Stop()
		session.loop = nil
	}
}

func currentWidget() *widget.Widget {
	session.lock.Lock()
	defer session.lock.Unlock()
	return session.widget
}

// currentResolver returns the widget's resolver, or a detached one when no
// widget exists, so that language features work before initialization.
func currentResolver() *widget.Resolver {
	if w := currentWidget(); w != nil {
		return w.Resolver()
	}
	return widget.NewResolver(parsedDocuments{}, newEngine(), widget.Immediate, nil)
}

// statusBar sends the widget's status to the editor. It is only called on
// the UI loop.
type statusBar struct {
	notify glsp.NotifyFunc
	widget atomic.Pointer[widget.Widget]
}

// UpdateWidget implements widget.StatusBar
func (bar *statusBar) UpdateWidget(id string) {
	w := bar.widget.Load()
	if w == nil || w.ID() != id || bar.notify == nil {
		return
	}
	bar.notify(MethodStatusBar, statusOf(w))
}

// caretSource fans caret events out to the registered listeners.
type caretSource struct {
	lock      sync.RWMutex
	listeners []*caretRegistration
}

type caretRegistration struct {
	listener widget.CaretListener
}

// AddCaretListener implements widget.CaretSource
func (source *caretSource) AddCaretListener(listener widget.CaretListener) func() {
	registration := &caretRegistration{listener: listener}
	source.lock.Lock()
	source.listeners = append(source.listeners, registration)
	source.lock.Unlock()

	return func() {
		source.lock.Lock()
		defer source.lock.Unlock()
		for i, candidate := range source.listeners {
			if candidate == registration {
				source.listeners = append(source.listeners[:i], source.listeners[i+1:]...)
				return
			}
		}
	}
}

func (source *caretSource) fire(context contextpkg.Context, event widget.CaretEvent) {
	source.lock.RLock()
	listeners := make([]*caretRegistration, len(source.listeners))
	copy(listeners, source.listeners)
	source.lock.RUnlock()

	for _, registration := range listeners {
		registration.listener.CaretPositionChanged(context, event)
	}
}

func (source *caretSource) count() int {
	source.lock.RLock()
	defer source.lock.RUnlock()
	return len(source.listeners)
}
