package alerts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/caresignal/accredwatch/pkg/model"
)

type routingFile struct {
	Topics map[string]string `yaml:"topics"`
}

var tierKeys = map[string]model.Priority{
	"critical": model.PriorityCritical,
	"high":     model.PriorityHigh,
	"medium":   model.PriorityMedium,
}

// LoadRouting reads a YAML routing file mapping alert tiers to SNS topic
// ARNs:
//
//	topics:
//	  critical: arn:aws:sns:us-east-1:123456789012:accreditation-critical
//	  high: arn:aws:sns:us-east-1:123456789012:accreditation-high
//	  medium: arn:aws:sns:us-east-1:123456789012:accreditation-medium
func LoadRouting(path string) (map[model.Priority]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routing file %s: %w", path, err)
	}
	return parseRouting(data, path)
}

func parseRouting(data []byte, path string) (map[model.Priority]string, error) {
	var rf routingFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse routing file %s: %w", path, err)
	}
	if len(rf.Topics) == 0 {
		return nil, fmt.Errorf("routing file %s: no topics defined", path)
	}

	topics := make(map[model.Priority]string, len(rf.Topics))
	for key, arn := range rf.Topics {
		tier, ok := tierKeys[key]
		if !ok {
			return nil, fmt.Errorf("routing file %s: unknown tier %q", path, key)
		}
		if arn == "" {
			return nil, fmt.Errorf("routing file %s: empty topic for tier %q", path, key)
		}
		topics[tier] = arn
	}

	return topics, nil
}
