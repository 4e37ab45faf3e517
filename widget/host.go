package widget

import (
	"context"
)

// CaretEvent is emitted by the host whenever the caret moves.
type CaretEvent struct {
	Document DocumentID
	// Offset is a byte offset into the document text.
	Offset int
}

type CaretListener interface {
	CaretPositionChanged(ctx context.Context, event CaretEvent)
}

// CaretListenerFunc adapts a function to CaretListener.
type CaretListenerFunc func(ctx context.Context, event CaretEvent)

func (f CaretListenerFunc) CaretPositionChanged(ctx context.Context, event CaretEvent) {
	f(ctx, event)
}

// CaretSource is the host's caret tracking subsystem. The returned
// function removes the listener.
type CaretSource interface {
	AddCaretListener(listener CaretListener) (remove func())
}

// StatusBar repaints widgets.
type StatusBar interface {
	UpdateWidget(id string)
}

// Dispatcher runs a function on the host's UI context, after the
// current event has been handled.
type Dispatcher interface {
	InvokeLater(f func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(f func())

func (d DispatcherFunc) InvokeLater(f func()) {
	d(f)
}

// Immediate runs the function on the calling goroutine. Suitable for
// hosts whose caret events already arrive on the UI thread.
var Immediate Dispatcher = DispatcherFunc(func(f func()) { f() })

// Host bundles the collaborators a widget is created against.
type Host struct {
	Documents  Documents
	Inferrer   Inferrer
	Carets     CaretSource
	StatusBar  StatusBar
	Dispatcher Dispatcher
}
