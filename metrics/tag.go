package metrics

import "strconv"

// TagOption produces a single "key:value" tag.
type TagOption func() string

// WithTag adds an arbitrary key:value tag.
func WithTag(key, value string) TagOption {
	return func() string {
		return key + ":" + value
	}
}

// WithTypeTag adds a "type" tag, used to tell implementations of the same
// interface apart.
func WithTypeTag(typeName string) TagOption {
	return WithTag("type", typeName)
}

// WithServiceTag adds a "service" tag.
func WithServiceTag(serviceName string) TagOption {
	return WithTag("service", serviceName)
}

// WithRouteTag adds a "route" tag naming an HTTP route.
func WithRouteTag(route string) TagOption {
	return WithTag("route", route)
}

// WithStatusTag adds a "status" tag with an HTTP status code.
func WithStatusTag(status int) TagOption {
	return WithTag("status", strconv.Itoa(status))
}

// WithOutcomeTag adds an "outcome" tag.
func WithOutcomeTag(outcome string) TagOption {
	return WithTag("outcome", outcome)
}

// GetTags evaluates the provided options.
func GetTags(opts ...TagOption) []string {
	tags := make([]string, 0, len(opts))
	for _, opt := range opts {
		tags = append(tags, opt())
	}
	return tags
}

func mergeTags(base []string, extra []TagOption) []string {
	if len(extra) == 0 {
		return base
	}

	tags := make([]string, 0, len(base)+len(extra))
	tags = append(tags, base...)
	return append(tags, GetTags(extra...)...)
}
