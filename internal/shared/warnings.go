package shared

import (
	"fmt"
	"sort"
	"strings"
)

// WarningType represents different types of warnings
type WarningType int

const (
	ProviderLookupWarning WarningType = iota
	TagReadWarning
	IncompleteMetadataWarning
	CoverArtWarning
	CopyFailedWarning
	VolumeWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // file or lookup the warning is about
	Details string // underlying error text
}

// WarningCollector collects per-file soft failures so they can be summarized once a run ends
type WarningCollector struct {
	warnings []Warning
	enabled  bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if !wc.enabled {
		return
	}
	wc.warnings = append(wc.warnings, Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	})
}

// AddProviderWarning records a provider call that failed and was treated as "no result"
func (wc *WarningCollector) AddProviderWarning(provider, lookup, details string) {
	context := fmt.Sprintf("%s: %s", provider, lookup)
	wc.AddWarning(ProviderLookupWarning, context, "Provider lookup failed", details)
}

// AddTagReadWarning records a file whose tags could not be read
func (wc *WarningCollector) AddTagReadWarning(path, details string) {
	wc.AddWarning(TagReadWarning, path, "Could not read tags", details)
}

// AddIncompleteMetadataWarning records a file that ended up with placeholder metadata
func (wc *WarningCollector) AddIncompleteMetadataWarning(fileName string) {
	wc.AddWarning(IncompleteMetadataWarning, fileName, "Incomplete metadata", "")
}

// AddCoverArtWarning records a cover art fetch or write failure
func (wc *WarningCollector) AddCoverArtWarning(album, details string) {
	wc.AddWarning(CoverArtWarning, album, "Could not save cover art", details)
}

// AddCopyFailedWarning records a file that could not be copied
func (wc *WarningCollector) AddCopyFailedWarning(path, details string) {
	wc.AddWarning(CopyFailedWarning, path, "Copy failed", details)
}

// AddVolumeWarning records a non-fatal volume operation failure
func (wc *WarningCollector) AddVolumeWarning(volume, details string) {
	wc.AddWarning(VolumeWarning, volume, "Volume operation failed", details)
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	return len(wc.warnings) > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", len(wc.warnings))
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		wc.printWarningTypeSection(warningType, grouped[warningType])
	}
}

func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	ColorWarning.Printf("\n%s (%d):\n", warningTypeTitle(warningType), len(warnings))

	// same context repeated is shown once with a count
	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		count := contextCounts[context]
		if count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

func warningTypeTitle(warningType WarningType) string {
	switch warningType {
	case ProviderLookupWarning:
		return "Provider Lookup Failures"
	case TagReadWarning:
		return "Unreadable Tags"
	case IncompleteMetadataWarning:
		return "Files With Incomplete Metadata"
	case CoverArtWarning:
		return "Cover Art Failures"
	case CopyFailedWarning:
		return "Copy Failures"
	case VolumeWarning:
		return "Volume Operation Failures"
	default:
		return "Other Warnings"
	}
}
