package events

// Event names emitted by the builder. The set is open: hosts may emit their own.
const (
	ComponentAdded         = "componentAdded"
	ComponentDeleted       = "componentDeleted"
	ComponentMoved         = "componentMoved"
	ComponentDragged       = "componentDragged"
	ComponentResized       = "componentResized"
	ComponentsBatchAdded   = "componentsBatchAdded"
	ComponentsBatchDeleted = "componentsBatchDeleted"
	CanvasAdded            = "canvasAdded"
	CanvasRemoved          = "canvasRemoved"
	CanvasActivated        = "canvasActivated"
	ZIndexChanged          = "zIndexChanged"
	ZIndexBatchChanged     = "zIndexBatchChanged"
	UndoExecuted           = "undoExecuted"
	RedoExecuted           = "redoExecuted"
	HistoryChanged         = "historyChanged"
	ConfigChanged          = "configChanged"
	ConfigsBatchChanged    = "configsBatchChanged"
	StateChanged           = "stateChanged"
	SelectionChanged       = "selectionChanged"
	ViewportChanged        = "viewportChanged"
	StateImported          = "stateImported"
	StateReset             = "stateReset"
)
