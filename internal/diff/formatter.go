package diff

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/olusolaa/cfn-diff-reporter/internal/core/domain"
	"github.com/olusolaa/cfn-diff-reporter/internal/core/ports"
)

// allProperties marks a resource type whose every property is security relevant.
const allProperties = "*"

var securityProperties = map[string][]string{
	"AWS::IAM::Role":                      {"AssumeRolePolicyDocument", "Policies", "ManagedPolicyArns", "PermissionsBoundary"},
	"AWS::IAM::User":                      {"Policies", "ManagedPolicyArns", "PermissionsBoundary", "Groups"},
	"AWS::IAM::Group":                     {"Policies", "ManagedPolicyArns"},
	"AWS::IAM::Policy":                    {allProperties},
	"AWS::IAM::ManagedPolicy":             {allProperties},
	"AWS::EC2::SecurityGroup":             {"SecurityGroupIngress", "SecurityGroupEgress"},
	"AWS::EC2::SecurityGroupIngress":      {allProperties},
	"AWS::EC2::SecurityGroupEgress":       {allProperties},
	"AWS::S3::BucketPolicy":               {"PolicyDocument"},
	"AWS::SQS::QueuePolicy":               {"PolicyDocument"},
	"AWS::SNS::TopicPolicy":               {"PolicyDocument"},
	"AWS::Lambda::Permission":             {allProperties},
	"AWS::KMS::Key":                       {"KeyPolicy"},
	"AWS::SecretsManager::ResourcePolicy": {"ResourcePolicy"},
}

// Formatter renders a TemplateDiff as terminal text in the style of
// `cdk diff`.
type Formatter struct {
	colored bool
}

type FormatterOption func(*Formatter)

// WithColor forces ANSI styling on or off regardless of the terminal.
func WithColor(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.colored = enabled
	}
}

func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{colored: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ ports.DiffFormatter = (*Formatter)(nil)

func (f *Formatter) FormatDifferences(d ports.Diff) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(f.paint(color.Bold, "Resources") + "\n")

	count := 0
	d.ForEachChange(func(change domain.ResourceChange) {
		count++
		f.writeChange(&b, change, change.PropertyChanges, true)
	})
	if count == 0 {
		return "There were no differences\n"
	}
	return b.String()
}

// FormatSecurityChanges lists only the changes that touch access control.
// It returns "" when there are none.
func (f *Formatter) FormatSecurityChanges(d ports.Diff) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	count := 0
	d.ForEachChange(func(change domain.ResourceChange) {
		props, ok := securityRelevant(change)
		if !ok {
			return
		}
		if count == 0 {
			b.WriteString(f.paint(color.Bold, "Security-relevant changes") + "\n")
		}
		count++
		f.writeChange(&b, change, props, false)
	})
	return b.String()
}

func securityRelevant(change domain.ResourceChange) ([]domain.PropertyChange, bool) {
	watched, ok := securityProperties[change.ResourceType()]
	if !ok {
		return nil, false
	}
	switch change.Classification {
	case domain.ChangeCreate, domain.ChangeDestroy, domain.ChangeOrphan, domain.ChangeReplace:
		if len(change.PropertyChanges) == 0 {
			return nil, true
		}
	}
	var props []domain.PropertyChange
	for _, pc := range change.PropertyChanges {
		if slices.Contains(watched, allProperties) || slices.Contains(watched, pc.Name) {
			props = append(props, pc)
		}
	}
	return props, len(props) > 0
}

func (f *Formatter) writeChange(b *strings.Builder, change domain.ResourceChange, props []domain.PropertyChange, withOther bool) {
	symbol, attr := f.symbolOf(change.Classification)
	line := fmt.Sprintf("%s %s %s", f.paint(attr, symbol), change.ResourceType(), change.LogicalID)
	if suffix := suffixOf(change.Classification); suffix != "" {
		line += " " + f.paint(attr, suffix)
	}
	b.WriteString(line + "\n")

	var children []string
	if withOther {
		children = append(children, change.OtherChanges...)
	}
	for i, pc := range props {
		last := i == len(props)-1 && len(children) == 0
		f.writeProperty(b, pc, last)
	}
	for i, other := range children {
		prefix := " ├─ "
		if i == len(children)-1 {
			prefix = " └─ "
		}
		b.WriteString(prefix + f.paint(color.FgYellow, "[~]") + " " + other + "\n")
	}
}

func (f *Formatter) writeProperty(b *strings.Builder, pc domain.PropertyChange, last bool) {
	branch, indent := " ├─ ", " │   "
	if last {
		branch, indent = " └─ ", "     "
	}
	header := fmt.Sprintf("%s %s", f.paint(color.FgYellow, "[~]"), pc.Name)
	if suffix := suffixOf(pc.Impact); suffix != "" {
		header += " " + f.paint(color.FgRed, suffix)
	}
	b.WriteString(branch + header + "\n")

	if isScalar(pc.Old) && isScalar(pc.New) {
		b.WriteString(indent + "├─ " + f.paint(color.FgRed, "[-] "+scalarText(pc.Old)) + "\n")
		b.WriteString(indent + "└─ " + f.paint(color.FgGreen, "[+] "+scalarText(pc.New)) + "\n")
		return
	}
	for _, l := range f.unifiedDiff(pc.Old, pc.New) {
		b.WriteString(indent + l + "\n")
	}
}

// unifiedDiff renders two structured values as YAML and diffs them line by
// line. File headers are dropped.
func (f *Formatter) unifiedDiff(oldVal, newVal any) []string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       difflib.SplitLines(toYAML(oldVal)),
		B:       difflib.SplitLines(toYAML(newVal)),
		Context: 2,
	})
	if err != nil {
		return []string{fmt.Sprintf("(diff unavailable: %v)", err)}
	}

	var out []string
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(l, "---"), strings.HasPrefix(l, "+++"), l == "":
			continue
		case strings.HasPrefix(l, "@@"):
			out = append(out, f.paint(color.FgCyan, l))
		case strings.HasPrefix(l, "-"):
			out = append(out, f.paint(color.FgRed, l))
		case strings.HasPrefix(l, "+"):
			out = append(out, f.paint(color.FgGreen, l))
		default:
			out = append(out, l)
		}
	}
	return out
}

func (f *Formatter) symbolOf(c domain.ChangeClassification) (string, color.Attribute) {
	switch c {
	case domain.ChangeCreate:
		return "[+]", color.FgGreen
	case domain.ChangeDestroy, domain.ChangeOrphan:
		return "[-]", color.FgRed
	case domain.ChangeReplace, domain.ChangeMayReplace:
		return "[~]", color.FgHiYellow
	default:
		return "[~]", color.FgYellow
	}
}

func suffixOf(c domain.ChangeClassification) string {
	switch c {
	case domain.ChangeReplace:
		return "(requires replacement)"
	case domain.ChangeMayReplace:
		return "(may cause replacement)"
	case domain.ChangeOrphan:
		return "(retained)"
	default:
		return ""
	}
}

func (f *Formatter) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if f.colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}

func scalarText(v any) string {
	if v == nil {
		return "(absent)"
	}
	if s, ok := v.(string); ok {
		return strings.ReplaceAll(s, "\n", " ")
	}
	return fmt.Sprint(v)
}

func toYAML(v any) string {
	if v == nil {
		return ""
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(out)
}
