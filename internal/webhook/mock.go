package webhook

import "context"

// MockClient permite tests sin llamar a un webhook real.
type MockClient struct {
	Reply      Reply
	ForwardErr error
	NotifyErr  error

	Events  []Event
	Actions []string
}

func (m *MockClient) Forward(ctx context.Context, ev Event) (Reply, error) {
	m.Events = append(m.Events, ev)
	if m.ForwardErr != nil {
		return Reply{}, m.ForwardErr
	}
	return m.Reply, nil
}

func (m *MockClient) Notify(ctx context.Context, action string, fields map[string]interface{}) error {
	m.Actions = append(m.Actions, action)
	return m.NotifyErr
}
