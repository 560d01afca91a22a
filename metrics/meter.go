package metrics

// Meter is a named counter with a fixed set of tags.
type Meter struct {
	client Client
	name   string
	tags   []string
}

// NewMeter returns a Meter submitting to client.
func NewMeter(client Client, name string, tagOptions ...TagOption) (*Meter, error) {
	if err := validateMetricName(name); err != nil {
		return nil, err
	}

	return &Meter{
		client: client,
		name:   name,
		tags:   GetTags(tagOptions...),
	}, nil
}

// Count adds value to the counter. Additional tags apply to this observation
// only.
func (m *Meter) Count(value int64, tagOptions ...TagOption) {
	_ = m.client.Count(m.name, value, mergeTags(m.tags, tagOptions))
}

// Incr adds one to the counter.
func (m *Meter) Incr(tagOptions ...TagOption) {
	m.Count(1, tagOptions...)
}
