package rules

import (
	"compliance_checker/internal/domain"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePack = `
rules:
  - id: voluntary
    name: Voluntary Registration
    reason: Everyone qualifies
    deadline: None
    risk_level: low
    penalty_preview: None
    penalty_explanation: Nothing happens
    plain_explanation: Optional paperwork
  - id: big-employer
    name: Big Employer Filing
    reason: Over 50 staff
    deadline: Yearly
    risk_level: high
    penalty_preview: Fine
    penalty_explanation: A fine is charged
    plain_explanation: File a form
    min_employees: 50
    max_employees: 500
`

func validRule(id string) domain.ComplianceRule {
	return domain.ComplianceRule{
		ID:                 id,
		Name:               "Rule " + id,
		Reason:             "reason",
		Deadline:           "deadline",
		RiskLevel:          domain.RiskMedium,
		PenaltyPreview:     "preview",
		PenaltyExplanation: "explanation",
		PlainExplanation:   "plain",
	}
}

func TestDefault_CatalogIsValidAndOrdered(t *testing.T) {
	table := Default()

	want := []string{
		"gst-registration", "pf-registration", "esi-registration",
		"professional-tax", "shops-establishment", "tds-compliance",
		"labour-welfare-fund", "audit-requirement", "gratuity", "msme-registration",
	}
	require.Equal(t, len(want), table.Len())
	for i, r := range table.Rules() {
		assert.Equal(t, want[i], r.ID)
	}
}

func TestNewTable_RejectsInvalidRules(t *testing.T) {
	missingName := validRule("a")
	missingName.Name = ""

	badLevel := validRule("b")
	badLevel.RiskLevel = "severe"

	inverted := validRule("c")
	inverted.MinTurnover = domain.BoundAt(100)
	inverted.MaxTurnover = domain.BoundAt(10)

	tests := []struct {
		name  string
		rules []domain.ComplianceRule
		want  error
	}{
		{"empty", nil, ErrEmptyTable},
		{"missing field", []domain.ComplianceRule{missingName}, domain.ErrInvalidRule},
		{"bad risk level", []domain.ComplianceRule{badLevel}, domain.ErrInvalidRule},
		{"min above max", []domain.ComplianceRule{inverted}, domain.ErrInvalidRule},
		{"duplicate id", []domain.ComplianceRule{validRule("x"), validRule("x")}, ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.rules)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewTable_EqualBoundsAllowed(t *testing.T) {
	r := validRule("exact")
	r.MinEmployees = domain.BoundAt(10)
	r.MaxEmployees = domain.BoundAt(10)

	_, err := NewTable([]domain.ComplianceRule{r})
	assert.NoError(t, err)
}

func TestTable_RulesReturnsCopy(t *testing.T) {
	table := Default()

	rs := table.Rules()
	rs[0].Name = "tampered"
	rs[0].MinTurnover = domain.Unbounded()

	got, err := table.Get("gst-registration")
	require.NoError(t, err)
	assert.Equal(t, "GST Registration", got.Name)
	v, ok := got.MinTurnover.Value()
	assert.True(t, ok)
	assert.Equal(t, 4_000_000.0, v)
}

func TestTable_GetUnknown(t *testing.T) {
	_, err := Default().Get("nope")
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestParsePack(t *testing.T) {
	table, err := ParsePack(strings.NewReader(samplePack))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	voluntary, err := table.Get("voluntary")
	require.NoError(t, err)
	assert.False(t, voluntary.MinTurnover.IsSet())
	assert.False(t, voluntary.MaxEmployees.IsSet())

	big, err := table.Get("big-employer")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, big.RiskLevel)
	lo, _ := big.MinEmployees.Value()
	hi, _ := big.MaxEmployees.Value()
	assert.Equal(t, 50.0, lo)
	assert.Equal(t, 500.0, hi)
}

func TestParsePack_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty document", ""},
		{"unknown field", "rules:\n  - id: a\n    colour: red\n"},
		{"bad risk level", strings.Replace(samplePack, "risk_level: low", "risk_level: urgent", 1)},
		{"inverted range", strings.Replace(samplePack, "max_employees: 500", "max_employees: 5", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePack(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestMarshalPack_CatalogSurvivesReload(t *testing.T) {
	data, err := MarshalPack(Default())
	require.NoError(t, err)

	reloaded, err := ParsePack(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, Default().Rules(), reloaded.Rules())
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePack), 0o644))

	table, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeObjectGetter struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeObjectGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket, f.key = *in.Bucket, *in.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestS3Source(t *testing.T) {
	getter := &fakeObjectGetter{body: samplePack}
	src := &S3Source{Client: getter, Bucket: "compliance", Key: "packs/india.yaml"}

	table, err := Load(context.Background(), src, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "compliance", getter.bucket)
	assert.Equal(t, "packs/india.yaml", getter.key)
	assert.Equal(t, "s3://compliance/packs/india.yaml", src.Name())
}

func TestS3Source_GetError(t *testing.T) {
	boom := errors.New("access denied")
	src := &S3Source{Client: &fakeObjectGetter{err: boom}, Bucket: "b", Key: "k"}

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStaticSource(t *testing.T) {
	table, err := StaticSource{}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default().Rules(), table.Rules())
}
