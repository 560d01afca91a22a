package timeutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var iso8601 = regexp.MustCompile(`(?i)^([-+]?)P(?:([-+]?[0-9]+)D)?(?:T(?:([-+]?[0-9]+)H)?(?:([-+]?[0-9]+)M)?(?:([-+]?[0-9]+)(?:[.,]([0-9]{0,9}))?S)?)?$`)

// IsISO8601 returns whether s is an ISO-8601 duration such as PT30S.
func IsISO8601(s string) bool {
	return iso8601.MatchString(s)
}

// ParseDuration parses either a Go duration ("30s", "1m30s") or an ISO-8601
// duration ("PT30S", "P1DT2H").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	return ParseISO8601(s)
}

// ParseISO8601 parses an ISO-8601 duration limited to days, hours, minutes and
// (fractional) seconds. Signed components are accepted, as is a leading sign
// that negates the whole duration.
func ParseISO8601(s string) (time.Duration, error) {
	m := iso8601.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("invalid duration %q", s)
	}

	units := []struct {
		value string
		unit  time.Duration
	}{
		{m[2], 24 * time.Hour},
		{m[3], time.Hour},
		{m[4], time.Minute},
		{m[5], time.Second},
	}

	var total time.Duration
	var seen bool
	for _, u := range units {
		if u.value == "" {
			continue
		}
		seen = true

		n, err := strconv.ParseInt(u.value, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid duration %q", s)
		}
		if n > math.MaxInt64/int64(u.unit) || n < math.MinInt64/int64(u.unit) {
			return 0, errors.Errorf("invalid duration %q: overflow", s)
		}

		if total, err = add(total, time.Duration(n)*u.unit); err != nil {
			return 0, errors.Wrapf(err, "invalid duration %q", s)
		}
	}
	if !seen {
		return 0, errors.Errorf("invalid duration %q", s)
	}

	if m[6] != "" {
		nanos, _ := strconv.ParseInt((m[6] + "000000000")[:9], 10, 64)
		var err error
		if total, err = add(total, time.Duration(nanos)); err != nil {
			return 0, errors.Wrapf(err, "invalid duration %q", s)
		}
	}

	if m[1] == "-" {
		return -total, nil
	}
	return total, nil
}

func add(x, y time.Duration) (time.Duration, error) {
	r := x + y
	if (x^r)&(y^r) < 0 {
		return 0, errors.New("duration overflow")
	}
	return r, nil
}
