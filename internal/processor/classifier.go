package processor

import (
	"fmt"
	"strings"

	"github.com/toyz/buildergen/internal/models"
)

// SetterPrefix is the name prefix every builder property must carry.
// Exported Go methods spell it "Set".
const SetterPrefix = "set"

// Messager receives diagnostics addressed at marked elements
type Messager interface {
	Report(diagnostic models.Diagnostic)
}

// IsValidSetter reports whether an element has exactly one parameter and a
// name starting with the setter prefix
func IsValidSetter(element models.MarkedElement) bool {
	return len(element.ParamTypes) == 1 && hasSetterPrefix(element.Name)
}

func hasSetterPrefix(name string) bool {
	if len(name) < len(SetterPrefix) {
		return false
	}
	head := name[:len(SetterPrefix)]
	return head == SetterPrefix || head == strings.ToUpper(SetterPrefix[:1])+SetterPrefix[1:]
}

// InvalidSetterMessage returns the fixed structural violation message for a marker
func InvalidSetterMessage(marker models.MarkerType) string {
	return fmt.Sprintf("//%s must be applied to a setXxx method with a single argument", marker)
}

// Classifier partitions marked elements into valid setters and invalid methods
type Classifier struct {
	messager Messager
}

// NewClassifier creates a classifier reporting to messager
func NewClassifier(messager Messager) *Classifier {
	return &Classifier{messager: messager}
}

// Classify splits the group, keeping the group's order in both halves, and
// reports one error diagnostic per invalid element
func (c *Classifier) Classify(group models.ElementGroup) models.ClassificationResult {
	result := models.ClassificationResult{
		ValidSetters:   make([]models.MarkedElement, 0, len(group.Elements)),
		InvalidMethods: make([]models.MarkedElement, 0),
	}

	for _, element := range group.Elements {
		if IsValidSetter(element) {
			result.ValidSetters = append(result.ValidSetters, element)
			continue
		}
		result.InvalidMethods = append(result.InvalidMethods, element)
	}

	if c.messager != nil {
		message := InvalidSetterMessage(group.Marker)
		for _, element := range result.InvalidMethods {
			c.messager.Report(models.Diagnostic{
				Severity: models.SeverityError,
				Kind:     models.ErrorTypeStructuralViolation,
				Message:  message,
				Element:  element,
			})
		}
	}

	return result
}
