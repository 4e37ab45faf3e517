package widget

import (
	"context"
	"sync"
)

const (
	WidgetID          = "PythonVariableType"
	WidgetDisplayName = "Python Variable Type"
	WidgetTooltip     = "Type of Python variable under caret"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// Factory creates one widget per host window.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (factory *Factory) ID() string {
	return WidgetID
}

func (factory *Factory) DisplayName() string {
	return WidgetDisplayName
}

// IsAvailable is always true: the widget has no preconditions, failures
// of the collaborators surface per query.
func (factory *Factory) IsAvailable() bool {
	return true
}

// Create builds a widget against host and registers its caret listener.
func (factory *Factory) Create(host Host) *Widget {
	widget := &Widget{statusBar: host.StatusBar}
	widget.resolver = NewResolver(host.Documents, host.Inferrer, host.Dispatcher, widget.repaint)
	if host.Carets != nil {
		widget.removeListener = host.Carets.AddCaretListener(widget)
	}
	log.Infof("created widget %s", WidgetID)
	return widget
}

func (factory *Factory) Dispose(widget *Widget) {
	if widget != nil {
		widget.Dispose()
	}
}

// Widget is the status bar widget: one resolver and its display text.
type Widget struct {
	resolver       *Resolver
	statusBar      StatusBar
	removeListener func()
	disposeOnce    sync.Once
}

func (widget *Widget) ID() string {
	return WidgetID
}

// Text is the status text to render.
func (widget *Widget) Text() string {
	return widget.resolver.Text()
}

func (widget *Widget) Tooltip() string {
	return WidgetTooltip
}

func (widget *Widget) Alignment() Alignment {
	return AlignCenter
}

// ClickConsumer is nil: the widget does nothing on click.
func (widget *Widget) ClickConsumer() func() {
	return nil
}

func (widget *Widget) Resolver() *Resolver {
	return widget.resolver
}

// CaretPositionChanged implements CaretListener
func (widget *Widget) CaretPositionChanged(ctx context.Context, event CaretEvent) {
	widget.resolver.OnCaretMoved(ctx, event.Document, event.Offset)
}

// Dispose removes the caret listener. Safe to call more than once.
func (widget *Widget) Dispose() {
	widget.disposeOnce.Do(func() {
		if widget.removeListener != nil {
			widget.removeListener()
		}
		log.Infof("disposed widget %s", WidgetID)
	})
}

func (widget *Widget) repaint() {
	if widget.statusBar != nil {
		widget.statusBar.UpdateWidget(WidgetID)
	}
}
