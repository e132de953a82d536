package models

// CloneItem returns a structural deep copy of an item. Snapshots held by
// commands must never alias live state.
func CloneItem(it GridItem) GridItem {
	out := it
	out.Layouts.Mobile = cloneMobile(it.Layouts.Mobile)
	out.Config = CloneConfig(it.Config)
	return out
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []GridItem) []GridItem {
	out := make([]GridItem, len(items))
	for i := range items {
		out[i] = CloneItem(items[i])
	}
	return out
}

// CloneCanvas deep-copies a canvas including its counter.
func CloneCanvas(c Canvas) Canvas {
	return Canvas{
		Items:         CloneItems(c.Items),
		ZIndexCounter: c.ZIndexCounter,
	}
}

// CloneCanvases deep-copies a canvases map.
func CloneCanvases(canvases map[string]Canvas) map[string]Canvas {
	out := make(map[string]Canvas, len(canvases))
	for id, c := range canvases {
		out[id] = CloneCanvas(c)
	}
	return out
}

// CloneState deep-copies a whole grid state.
func CloneState(s GridState) GridState {
	out := s
	out.Canvases = CloneCanvases(s.Canvases)
	return out
}

// CloneConfig deep-copies an opaque config bag. Nested maps and slices are
// copied; anything else is treated as an immutable scalar.
func CloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneConfig(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []int:
		return append([]int(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	default:
		return v
	}
}

func cloneMobile(m MobileLayout) MobileLayout {
	return MobileLayout{
		X:          cloneInt(m.X),
		Y:          cloneInt(m.Y),
		Width:      cloneInt(m.Width),
		Height:     cloneInt(m.Height),
		Customized: m.Customized,
	}
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
