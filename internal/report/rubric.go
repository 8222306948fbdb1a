package report

import (
	"fmt"
	"sort"
	"strings"
)

// NumBuckets is the number of severity buckets. Bucket 0 blocks evaluation,
// bucket 3 is minor.
const NumBuckets = 4

// Check identifies one documentation-quality check.
type Check string

const (
	CheckUnknownInterface            Check = "unknown_interface"
	CheckMissingDescription          Check = "missing_description"
	CheckWeakDescription             Check = "weak_description"
	CheckMissingDocumentation        Check = "missing_documentation"
	CheckMissingContact              Check = "missing_contact"
	CheckMissingCategory             Check = "missing_category"
	CheckMissingLicense              Check = "missing_license"
	CheckMissingWSDL                 Check = "missing_wsdl"
	CheckMissingOperations           Check = "missing_operations"
	CheckMissingOperationDescription Check = "missing_operation_description"
	CheckMissingParameterDescription Check = "missing_parameter_description"
)

// Rubric assigns each check to a severity bucket.
type Rubric map[Check]int

// DefaultRubric returns the standard check severities.
func DefaultRubric() Rubric {
	return Rubric{
		CheckUnknownInterface:            0,
		CheckMissingDescription:          1,
		CheckWeakDescription:             1,
		CheckMissingDocumentation:        1,
		CheckMissingContact:              1,
		CheckMissingCategory:             2,
		CheckMissingLicense:              2,
		CheckMissingWSDL:                 2,
		CheckMissingOperations:           2,
		CheckMissingOperationDescription: 2,
		CheckMissingParameterDescription: 3,
	}
}

// Severity returns the bucket for c. Unknown checks are minor.
func (r Rubric) Severity(c Check) int {
	if sev, ok := r[c]; ok {
		return sev
	}
	return NumBuckets - 1
}

// WithOverrides returns a copy of r with the given severities replaced.
// Every key must name a known check and every value must be a bucket index.
func (r Rubric) WithOverrides(overrides map[string]int) (Rubric, error) {
	out := make(Rubric, len(r))
	for k, v := range r {
		out[k] = v
	}

	var problems []string
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		sev := overrides[name]
		check := Check(name)
		if _, known := r[check]; !known {
			problems = append(problems, fmt.Sprintf("unknown check %q", name))
			continue
		}
		if sev < 0 || sev >= NumBuckets {
			problems = append(problems, fmt.Sprintf("check %q: severity %d out of range 0-%d", name, sev, NumBuckets-1))
			continue
		}
		out[check] = sev
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid rubric: %s", strings.Join(problems, "; "))
	}
	return out, nil
}
