package curate

import (
	"regexp"
	"strings"
	"testing"

	"github.com/grailbio/srna/interval"
	"github.com/stretchr/testify/assert"
)

// proteinRow builds one 14-column protein hit line.
func proteinRow(query, bit, eval, ident string) string {
	return strings.Join([]string{
		query, "sp|P12345|YFIA_ECOLI", bit, eval, ident,
		"95", "3", "0", "1", "95", "10", "104", "300", "110",
	}, "\t") + "\n"
}

func TestReadProteinHits(t *testing.T) {
	table := "# query\tsubject\tbit\tevalue\tident\t...\n" +
		proteinRow("t1", "60.5", "1e-10", "45.0") +
		proteinRow("t2", "50", "1e-10", "45.0") + // bit score at the cutoff
		proteinRow("t3", "60.5", "1e-4", "45.0") + // e-value at the cutoff
		proteinRow("t4", "60.5", "1e-10", "30") + // identity at the cutoff
		proteinRow("t5", "49", "0.5", "20") +
		proteinRow("t1", "200", "1e-50", "80") // second alignment, same query
	hits, err := ReadProteinHits(strings.NewReader(table), DefaultOpts)
	assert.NoError(t, err)
	assert.Equal(t, []string{"t1"}, hits.IDs())
}

func TestReadProteinHitsWeakAndStrong(t *testing.T) {
	// One weak and one strong alignment: the strong one flags the query.
	table := proteinRow("t1", "20", "0.9", "99") +
		proteinRow("t1", "120", "1e-30", "55")
	hits, err := ReadProteinHits(strings.NewReader(table), DefaultOpts)
	assert.NoError(t, err)
	assert.True(t, hits.Contains("t1"))
}

func TestReadProteinHitsBadRow(t *testing.T) {
	table := proteinRow("t1", "notanumber", "1e-10", "45.0")
	_, err := ReadProteinHits(strings.NewReader(table), DefaultOpts)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "t1")

	table = "t1\tonly\tthree\n"
	_, err = ReadProteinHits(strings.NewReader(table), DefaultOpts)
	assert.Error(t, err)
}

const rnaScanTable = `# family   accession   query
RyhB	RF00057	t1	55.2	1.2e-09
tRNA	RF00005	t2	80.1	3e-20
sRNA_GcvB	RF00022	t3	44.0	1e-06
SRNA_foo	RF99999	t4	41.0	2e-05
`

func TestReadRNAFamilyHits(t *testing.T) {
	exclude := regexp.MustCompile(DefaultOpts.RNAFamilyExclude)
	hits, err := ReadRNAFamilyHits(strings.NewReader(rnaScanTable), exclude)
	assert.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, hits.IDs())

	// Without the exclusion every query is flagged.
	hits, err = ReadRNAFamilyHits(strings.NewReader(rnaScanTable), nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, hits.IDs())
}

func TestReadRNAFamilyHitsMalformed(t *testing.T) {
	_, err := ReadRNAFamilyHits(strings.NewReader("tRNA RF00005\n"), nil)
	assert.Error(t, err)
}

func TestReadHitList(t *testing.T) {
	in := "# known hits\nt1\n\n  t2  \nt1\n"
	hits, err := ReadHitList(strings.NewReader(in))
	assert.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, hits.IDs())
}

func TestFilterHomology(t *testing.T) {
	ts := []Transcript{
		cand("t1", "c1", 0, 100, interval.StrandPlus),
		cand("t2", "c1", 200, 300, interval.StrandPlus),
		cand("t3", "c1", 400, 500, interval.StrandPlus),
	}
	hits := HitSet{}
	hits.Add("t2")
	got := FilterHomology(ts, hits)
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t3", got[1].ID)

	// Rerunning on its own output changes nothing.
	assert.Equal(t, got, FilterHomology(got, hits))

	// A nil set passes everything through untouched.
	assert.Equal(t, 3, len(FilterHomology(ts, nil)))
}
