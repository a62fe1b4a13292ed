package settings

import "context"

// Memory is the in-memory Repository used by tests.
type Memory struct {
	Values map[string]string
}

func NewMemory(values map[string]string) *Memory {
	if values == nil {
		values = map[string]string{}
	}
	return &Memory{Values: values}
}

func (m *Memory) GetAll(ctx context.Context) (map[string]string, error) {
	copied := make(map[string]string, len(m.Values))
	for k, v := range m.Values {
		copied[k] = v
	}
	return copied, nil
}

func (m *Memory) Set(ctx context.Context, name, value string) error {
	m.Values[name] = value
	return nil
}
