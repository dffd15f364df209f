package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"jobfit/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "Summary", &SummaryTextFormatter{})
	registry.RegisterFormatter("markdown", "Summary", &SummaryMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisReport:
		return "AnalysisReport"
	case types.Summary:
		return "Summary"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ReportTextFormatter handles text formatting for analysis reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== FIT ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Session: %s\n", report.SessionID))
	if report.Job.Title != "" {
		output.WriteString(fmt.Sprintf("Position: %s", report.Job.Title))
		if report.Job.Company != "" {
			output.WriteString(fmt.Sprintf(" at %s", report.Job.Company))
		}
		output.WriteString("\n")
	}
	output.WriteString(fmt.Sprintf("Recommendation: %s\n", report.Record.Recommendation))
	output.WriteString(fmt.Sprintf("Overall Score: %.2f\n\n", report.Record.OverallScore))

	output.WriteString("=== SUB-SCORES ===\n")
	output.WriteString(fmt.Sprintf("Skills:     %.2f\n", report.Record.SkillScore))
	output.WriteString(fmt.Sprintf("Experience: %.2f\n", report.Record.ExperienceScore))
	output.WriteString(fmt.Sprintf("Education:  %.2f\n", report.Record.EducationScore))
	output.WriteString(fmt.Sprintf("Seniority:  %.2f\n\n", report.Record.SeniorityScore))

	output.WriteString("=== SKILL MATCHES ===\n")
	for _, m := range report.Record.SkillMatches.Matches {
		switch m.Kind {
		case types.MatchKindNone:
			output.WriteString(fmt.Sprintf("- %s (%s): no match\n", m.JobSkill.Name, m.JobSkill.Tag))
		default:
			output.WriteString(fmt.Sprintf("- %s (%s): %s via %q (similarity %.2f)\n",
				m.JobSkill.Name, m.JobSkill.Tag, m.Kind, m.CandidateSkill, m.Similarity))
		}
	}
	output.WriteString("\n")

	if len(report.Record.Evidence) > 0 {
		output.WriteString("=== EVIDENCE ===\n")
		for i, snippet := range report.Record.Evidence {
			output.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, snippet.SourceDocument, snippet.Claim))
			output.WriteString(fmt.Sprintf("   %q (offset %d)\n", snippet.Text, snippet.Offset))
		}
		output.WriteString("\n")
	}

	if len(report.Summaries) > 0 {
		output.WriteString("=== SUMMARY ===\n")
		latest := latestSummary(report.Summaries)
		output.WriteString(latest.Text)
		output.WriteString("\n")
		if latest.Sequence > 0 {
			output.WriteString(fmt.Sprintf("\n(revision %d of %d)\n", latest.Sequence, len(report.Summaries)-1))
		}
	}

	if report.Abandoned {
		output.WriteString(fmt.Sprintf("\nSession abandoned: %s\n", report.AbandonedReason))
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "AnalysisReport"
}

// ReportMarkdownFormatter handles markdown formatting for analysis reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.AnalysisReport)
	if !ok {
		return "", fmt.Errorf("expected AnalysisReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Fit Analysis\n\n")
	if report.Job.Title != "" {
		output.WriteString(fmt.Sprintf("**Position:** %s", report.Job.Title))
		if report.Job.Company != "" {
			output.WriteString(fmt.Sprintf(" at %s", report.Job.Company))
		}
		output.WriteString("\n\n")
	}
	output.WriteString(fmt.Sprintf("**Recommendation:** %s\n\n", report.Record.Recommendation))
	output.WriteString(fmt.Sprintf("**Overall Score:** %.2f\n\n", report.Record.OverallScore))

	output.WriteString("## Sub-Scores\n\n")
	output.WriteString(fmt.Sprintf("- Skills: %.2f\n", report.Record.SkillScore))
	output.WriteString(fmt.Sprintf("- Experience: %.2f\n", report.Record.ExperienceScore))
	output.WriteString(fmt.Sprintf("- Education: %.2f\n", report.Record.EducationScore))
	output.WriteString(fmt.Sprintf("- Seniority: %.2f\n\n", report.Record.SeniorityScore))

	output.WriteString("## Skill Matches\n\n")
	for _, m := range report.Record.SkillMatches.Matches {
		switch m.Kind {
		case types.MatchKindNone:
			output.WriteString(fmt.Sprintf("- **%s** (%s): no match\n", m.JobSkill.Name, m.JobSkill.Tag))
		default:
			output.WriteString(fmt.Sprintf("- **%s** (%s): %s via %q (similarity %.2f)\n",
				m.JobSkill.Name, m.JobSkill.Tag, m.Kind, m.CandidateSkill, m.Similarity))
		}
	}
	output.WriteString("\n")

	if len(report.Record.Evidence) > 0 {
		output.WriteString("## Evidence\n\n")
		for i, snippet := range report.Record.Evidence {
			output.WriteString(fmt.Sprintf("%d. **%s** (%s, offset %d)\n", i+1, snippet.Claim, snippet.SourceDocument, snippet.Offset))
			output.WriteString(fmt.Sprintf("   > %s\n\n", snippet.Text))
		}
	}

	if len(report.Summaries) > 0 {
		output.WriteString("## Summary\n\n")
		latest := latestSummary(report.Summaries)
		output.WriteString(latest.Text)
		output.WriteString("\n")
		if latest.Sequence > 0 {
			output.WriteString(fmt.Sprintf("\n*Revision %d; %d prior summaries in the audit trail.*\n", latest.Sequence, latest.Sequence))
		}
	}

	if report.Abandoned {
		output.WriteString(fmt.Sprintf("\n**Session abandoned:** %s\n", report.AbandonedReason))
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "AnalysisReport"
}

// SummaryTextFormatter handles text formatting for a single summary
type SummaryTextFormatter struct{}

func (stf *SummaryTextFormatter) Format(data any) (string, error) {
	summary, ok := data.(types.Summary)
	if !ok {
		return "", fmt.Errorf("expected Summary, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SUMMARY ===\n\n")
	output.WriteString(summary.Text)
	output.WriteString("\n\n")
	output.WriteString(fmt.Sprintf("Record: %s\n", summary.RecordID))
	output.WriteString(fmt.Sprintf("Sequence: %d\n", summary.Sequence))
	if summary.RevisionComment != "" {
		output.WriteString(fmt.Sprintf("Revision comment: %s\n", summary.RevisionComment))
	}

	return output.String(), nil
}

func (stf *SummaryTextFormatter) SupportedType() string {
	return "Summary"
}

// SummaryMarkdownFormatter handles markdown formatting for a single summary
type SummaryMarkdownFormatter struct{}

func (smf *SummaryMarkdownFormatter) Format(data any) (string, error) {
	summary, ok := data.(types.Summary)
	if !ok {
		return "", fmt.Errorf("expected Summary, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# Summary (revision %d)\n\n", summary.Sequence))
	output.WriteString(summary.Text)
	output.WriteString("\n\n")
	output.WriteString(fmt.Sprintf("**Record:** %s\n", summary.RecordID))
	if summary.RevisionComment != "" {
		output.WriteString(fmt.Sprintf("\n**Revision comment:** %s\n", summary.RevisionComment))
	}

	return output.String(), nil
}

func (smf *SummaryMarkdownFormatter) SupportedType() string {
	return "Summary"
}

func latestSummary(summaries []types.Summary) types.Summary {
	latest := summaries[0]
	for _, s := range summaries[1:] {
		if s.Sequence > latest.Sequence {
			latest = s
		}
	}
	return latest
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
