package socketio

// Socket.io payloads arrive as any; these helpers pull typed values back
// out without panicking on malformed input.

func payload(args []any) (map[string]any, bool) {
	if len(args) == 0 {
		return nil, false
	}
	m, ok := args[0].(map[string]any)
	return m, ok
}

func floatArg(args []any) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	if v, ok := args[0].(float64); ok {
		return v, true
	}
	if m, ok := args[0].(map[string]any); ok {
		if v, ok := m["value"].(float64); ok {
			return v, true
		}
	}
	return 0, false
}

func boolValueArg(args []any) (bool, bool) {
	if len(args) == 0 {
		return false, false
	}
	if v, ok := args[0].(bool); ok {
		return v, true
	}
	if m, ok := args[0].(map[string]any); ok {
		if v, ok := m["value"].(bool); ok {
			return v, true
		}
	}
	return false, false
}

func stringField(args []any, key string) (string, bool) {
	m, ok := payload(args)
	if !ok {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}

func intField(m map[string]any, key string, fallback int) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func boolField(m map[string]any, key string, fallback bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return fallback
}

func stringSliceField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
