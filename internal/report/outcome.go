package report

// Outcome is the result of building a service report: *Included or *Excluded.
type Outcome interface {
	isOutcome()
}

// Included is a report to publish.
type Included struct {
	ServiceID   string  `yaml:"service_id"`
	ServiceName string  `yaml:"service_name"`
	ServiceURL  string  `yaml:"service_url"`
	HTML        string  `yaml:"-"`
	Actions     Actions `yaml:"actions"`
	Level       Level   `yaml:"level"`
}

// Excluded is a service left out of the wiki.
type Excluded struct {
	ServiceID   string `yaml:"service_id"`
	ServiceName string `yaml:"service_name"`
	Reason      string `yaml:"reason"`
}

func (*Included) isOutcome() {}
func (*Excluded) isOutcome() {}
