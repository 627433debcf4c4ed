package loader

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/openfroyo/mcuconf/pkg/mcu"
)

// document is the typed view of a description used for tag validation.
// Pin attributes beyond the well-known keys stay in the tree.
type document struct {
	// Name is the MCU name.
	Name string `json:"name" validate:"required"`

	// Package is the package designator, e.g. "LQFP48".
	Package string `json:"package,omitempty" validate:"omitempty,mcu_package"`

	// Core is the CPU core.
	Core string `json:"core,omitempty" validate:"omitempty,oneof=CortexM0 CortexM3 CortexM4 CortexM7 AVR STM8 MSP430"`

	// FrequencyMHz is the maximum core clock.
	FrequencyMHz uint16 `json:"frequency_mhz,omitempty"`

	// Memory is the memory map.
	Memory []memoryDocument `json:"memory,omitempty" validate:"dive"`

	// Platform is the vendor family information.
	Platform *platformDocument `json:"platform,omitempty"`

	// Peripherals lists on-chip peripherals.
	Peripherals []peripheralDocument `json:"peripherals,omitempty" validate:"dive"`

	// Pins is the ordered pin list.
	Pins []pinDocument `json:"pins" validate:"dive"`
}

type memoryDocument struct {
	Kind  string `json:"kind" validate:"required,oneof=flash eeprom ram"`
	Start uint32 `json:"start"`
	Size  uint32 `json:"size"`
}

type platformDocument struct {
	Vendor string `json:"vendor" validate:"required,oneof=STM32 STM8 AVR MSP430"`
	Family string `json:"family,omitempty"`
	Line   string `json:"line,omitempty"`
}

type peripheralDocument struct {
	Name       string `json:"name" validate:"required"`
	ConfigFile string `json:"config_file,omitempty"`
}

type pinDocument struct {
	Name    string   `json:"name" validate:"required"`
	Signals []string `json:"signals,omitempty" validate:"dive,required"`
	Signal  string   `json:"signal,omitempty"`
}

// newValidator returns a validator that reports json field names and knows
// the description-specific rules.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Errors are impossible here: the tag name is static and non-empty.
	_ = v.RegisterValidation("mcu_package", func(fl validator.FieldLevel) bool {
		_, err := mcu.ParsePackage(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(pinDocument)
		if p.Signal != "" && !slices.Contains(p.Signals, p.Signal) {
			sl.ReportError(p.Signal, "signal", "Signal", "signal_offered", "")
		}
	}, pinDocument{})

	return v
}

// validateDocument runs tag validation and converts failures to findings.
func validateDocument(v *validator.Validate, tree *Tree, doc *document) []Finding {
	err := v.Struct(doc)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Finding{{Reason: ReasonInvalidValue, Message: err.Error()}}
	}

	findings := make([]Finding, 0, len(verrs))
	for _, fe := range verrs {
		field := namespacePath(fe.Namespace())
		pos := tree.Locate(field)
		findings = append(findings, Finding{
			Field:   field,
			Reason:  ReasonInvalidValue,
			Message: fieldMessage(fe),
			Line:    pos.Line,
			Column:  pos.Column,
		})
	}
	return findings
}

// namespacePath strips the top-level struct name from a validator namespace.
func namespacePath(ns string) string {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return ns
	}
	return rest
}

// fieldMessage describes a failed validation tag.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "oneof":
		return fmt.Sprintf("%q is not one of [%s]", fe.Value(), fe.Param())
	case "mcu_package":
		return fmt.Sprintf("%q is not a package designator such as LQFP48", fe.Value())
	case "signal_offered":
		return fmt.Sprintf("selected signal %q is not listed in signals", fe.Value())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// description builds the mcu.Description from a validated document and the
// tree the pin attributes come from.
func description(tree *Tree, doc *document) (mcu.Description, error) {
	d := mcu.Description{
		Name:         doc.Name,
		Core:         mcu.Core(doc.Core),
		FrequencyMHz: doc.FrequencyMHz,
	}

	if doc.Package != "" {
		pkg, err := mcu.ParsePackage(doc.Package)
		if err != nil {
			return d, err
		}
		d.Package = pkg
	}

	for _, m := range doc.Memory {
		d.Memory = append(d.Memory, mcu.MemoryRegion{
			Kind:  mcu.MemoryKind(m.Kind),
			Start: m.Start,
			Size:  m.Size,
		})
	}

	if doc.Platform != nil {
		d.Platform = &mcu.Platform{
			Vendor: doc.Platform.Vendor,
			Family: doc.Platform.Family,
			Line:   doc.Platform.Line,
		}
	}

	for _, p := range doc.Peripherals {
		d.Peripherals = append(d.Peripherals, mcu.Peripheral{
			Name:       p.Name,
			ConfigFile: p.ConfigFile,
		})
	}

	entries, _ := tree.Root["pins"].([]any)
	d.Pins = make([]mcu.Pin, 0, len(entries))
	for _, e := range entries {
		entry := e.(map[string]any)
		name := entry["name"].(string)

		attrs := make(map[string]any, len(entry)-1)
		for k, v := range entry {
			if k != "name" {
				attrs[k] = v
			}
		}
		d.Pins = append(d.Pins, mcu.NewPin(name, attrs))
	}

	return d, nil
}
