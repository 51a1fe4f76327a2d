package fasta_test

import (
	"bytes"
	"io/ioutil"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/srna/encoding/fasta"
	"github.com/grailbio/srna/interval"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

const genomeFasta = ">chrI\n" +
	"ACGTACGTAC\n" +
	"GGATCCGGAT\n" +
	"TTAC\n" +
	">chrII circular plasmid\n" +
	"ACGTGGGTTT\n" +
	"CCC\n"

const genomeIndex = "chrI\t24\t6\t10\t11\n" +
	"chrII\t13\t57\t10\t11\n"

// both returns the fixture genome loaded eagerly and through its index.
func both(t *testing.T) []fasta.Fasta {
	mem, err := fasta.New(strings.NewReader(genomeFasta))
	assert.NoError(t, err)
	idx, err := fasta.NewIndexed(strings.NewReader(genomeFasta), strings.NewReader(genomeIndex))
	assert.NoError(t, err)
	return []fasta.Fasta{mem, idx}
}

func TestGet(t *testing.T) {
	tests := []struct {
		contig     string
		start, end interval.PosType
		want       string
		wantErr    bool
	}{
		{"chrI", 0, 24, "ACGTACGTACGGATCCGGATTTAC", false},
		{"chrI", 8, 12, "ACGG", false}, // spans a line break
		{"chrI", 20, 24, "TTAC", false},
		{"chrI", 9, 10, "C", false},
		{"chrI", 10, 11, "G", false},
		{"chrII", 0, 13, "ACGTGGGTTTCCC", false},
		{"chrII", 10, 13, "CCC", false},
		{"chrVII", 0, 1, "", true},
		{"chrI", 0, 25, "", true},
		{"chrI", 5, 3, "", true},
		{"chrI", 3, 3, "", true},
		{"chrI", -1, 3, "", true},
	}
	for _, fa := range both(t) {
		for _, tt := range tests {
			got, err := fa.Get(tt.contig, tt.start, tt.end)
			if tt.wantErr {
				expect.True(t, err != nil, "%s [%d, %d): expected an error", tt.contig, tt.start, tt.end)
				continue
			}
			expect.NoError(t, err, "%s [%d, %d)", tt.contig, tt.start, tt.end)
			expect.EQ(t, got, tt.want, "%s [%d, %d)", tt.contig, tt.start, tt.end)
		}
	}
}

func TestLen(t *testing.T) {
	for _, fa := range both(t) {
		n, err := fa.Len("chrI")
		assert.NoError(t, err)
		expect.EQ(t, n, interval.PosType(24))
		n, err = fa.Len("chrII")
		assert.NoError(t, err)
		expect.EQ(t, n, interval.PosType(13))
		_, err = fa.Len("chrVII")
		expect.True(t, err != nil)
	}
}

func TestContigs(t *testing.T) {
	for _, fa := range both(t) {
		expect.EQ(t, fa.Contigs(), []string{"chrI", "chrII"})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := fasta.New(strings.NewReader(""))
	assert.Regexp(t, err, "empty FASTA")

	_, err = fasta.New(strings.NewReader("ACGT\n>x\nAC\n"))
	assert.Regexp(t, err, "precedes the first FASTA header")

	_, err = fasta.New(strings.NewReader(">a\nAC\n>a\nGG\n"))
	assert.Regexp(t, err, "duplicate sequence a")
}

func TestIndexedCRLF(t *testing.T) {
	fa, err := fasta.NewIndexed(
		strings.NewReader(">p1\r\nACGT\r\nGG\r\n"),
		strings.NewReader("p1\t6\t5\t4\t6\n"))
	assert.NoError(t, err)
	seq, err := fa.Get("p1", 2, 6)
	assert.NoError(t, err)
	expect.EQ(t, seq, "GTGG")
}

func TestIndexErrors(t *testing.T) {
	for _, idx := range []string{
		"chrI\toops\n",                     // too few columns
		"chrI\t3000000000\t6\t60\t61\n",    // length overflows the position type
		"chrI\t10\t6\t60\t59\n",            // more bases than bytes per line
		"chrI\t10\t6\t0\t1\n",              // zero bases per line
		"chrI\t10\t-6\t60\t61\n",           // negative offset
		"a\t5\t6\t5\t6\na\t5\t20\t5\t6\n",  // duplicate name
		"\t5\t6\t5\t6\n",                   // missing name
	} {
		_, err := fasta.NewIndexed(strings.NewReader(genomeFasta), strings.NewReader(idx))
		expect.True(t, err != nil, "index %q must not parse", idx)
	}
}

func TestGenerateIndex(t *testing.T) {
	generate := func(fa string) string {
		var idx bytes.Buffer
		assert.NoError(t, fasta.GenerateIndex(&idx, strings.NewReader(fa)))
		return idx.String()
	}

	expect.EQ(t, generate(genomeFasta), genomeIndex)

	// MS-DOS newlines count toward the line width.
	expect.EQ(t, generate(">E0\r\nGGGG\r\n>E1\r\nAAAAA\r\n"),
		"E0\t4\t5\t4\t6\nE1\t5\t16\t5\t7\n")

	// No newline after the final base.
	expect.EQ(t, generate(">E0\nGGGG\n>E1\nCCCCC\nAAAAA"),
		"E0\t4\t4\t4\t5\nE1\t10\t13\t5\t6\n")

	// A lone unterminated line has equal base and byte widths.
	expect.EQ(t, generate(">E0\nGGGG\n>E1\nAAAAA"),
		"E0\t4\t4\t4\t5\nE1\t5\t13\t5\t5\n")
}

func TestGenerateIndexErrors(t *testing.T) {
	generate := func(fa string) error {
		var idx bytes.Buffer
		return fasta.GenerateIndex(&idx, strings.NewReader(fa))
	}
	assert.Regexp(t, generate(""), "empty FASTA")
	assert.Regexp(t, generate("ACGT\n>x\nAC\n"), "precedes the first FASTA header")
	assert.Regexp(t, generate(">a\n>b\nAC\n"), "a: no bases")
	// A short line admits no further sequence.
	assert.Regexp(t, generate(">a\nACGT\nAC\nGGGG\n"), "uneven line lengths")
	assert.Regexp(t, generate(">a\nAC\nACGT\n"), "uneven line lengths")
	assert.Regexp(t, generate(">a\nACGT\n\nGGGG\n"), "uneven line lengths")
}

func TestGenerateRoundTrip(t *testing.T) {
	var idx bytes.Buffer
	assert.NoError(t, fasta.GenerateIndex(&idx, strings.NewReader(genomeFasta)))
	indexed, err := fasta.NewIndexed(strings.NewReader(genomeFasta), &idx)
	assert.NoError(t, err)
	mem, err := fasta.New(strings.NewReader(genomeFasta))
	assert.NoError(t, err)
	for _, contig := range mem.Contigs() {
		n, err := mem.Len(contig)
		assert.NoError(t, err)
		want, err := mem.Get(contig, 0, n)
		assert.NoError(t, err)
		got, err := indexed.Get(contig, 0, n)
		assert.NoError(t, err, contig)
		expect.EQ(t, got, want, contig)
	}
}

func TestReadLengths(t *testing.T) {
	got, err := fasta.ReadLengths(strings.NewReader(genomeIndex))
	assert.NoError(t, err)
	expect.EQ(t, got, fasta.Lengths{
		"chrI":  interval.PosType(24),
		"chrII": interval.PosType(13),
	})

	_, err = fasta.ReadLengths(strings.NewReader("chr1\toops\n"))
	expect.True(t, err != nil)

	// Lengths must fit the position type.
	_, err = fasta.ReadLengths(strings.NewReader("chr1\t3000000000\t6\t60\t61\n"))
	expect.True(t, err != nil)
}

func TestReadDictLengths(t *testing.T) {
	dict := "@HD\tVN:1.6\n" +
		"@SQ\tSN:chr1\tLN:248956422\n" +
		"@SQ\tSN:chrM\tLN:16569\n"
	got, err := fasta.ReadDictLengths(strings.NewReader(dict))
	assert.NoError(t, err)
	expect.EQ(t, got, fasta.Lengths{
		"chr1": interval.PosType(248956422),
		"chrM": interval.PosType(16569),
	})

	_, err = fasta.ReadDictLengths(strings.NewReader("@SQ\tSN:chr1\n"))
	expect.True(t, err != nil, "@SQ without LN must not parse")
}

func TestReadLengthsPath(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	faiPath := filepath.Join(tempDir, "genome.fa.fai")
	assert.NoError(t, ioutil.WriteFile(faiPath, []byte("chr1\t1000\t6\t60\t61\n"), 0644))
	got, err := fasta.ReadLengthsPath(ctx, faiPath)
	assert.NoError(t, err)
	expect.EQ(t, got, fasta.Lengths{"chr1": interval.PosType(1000)})

	dictPath := filepath.Join(tempDir, "genome.dict")
	assert.NoError(t, ioutil.WriteFile(dictPath,
		[]byte("@HD\tVN:1.6\n@SQ\tSN:chr2\tLN:500\n"), 0644))
	got, err = fasta.ReadLengthsPath(ctx, dictPath)
	assert.NoError(t, err)
	expect.EQ(t, got, fasta.Lengths{"chr2": interval.PosType(500)})
}

func BenchmarkIndexedGet(b *testing.B) {
	rnd := rand.New(rand.NewSource(0))
	var fa strings.Builder
	fa.WriteString(">bench\n")
	const contigLen = 100000
	for i := 0; i < contigLen; i += 80 {
		for j := 0; j < 80; j++ {
			fa.WriteByte("ACGT"[rnd.Intn(4)])
		}
		fa.WriteByte('\n')
	}
	var idx bytes.Buffer
	if err := fasta.GenerateIndex(&idx, strings.NewReader(fa.String())); err != nil {
		b.Fatal(err)
	}
	indexed, err := fasta.NewIndexed(strings.NewReader(fa.String()), &idx)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := interval.PosType(rnd.Intn(contigLen - 500))
		if _, err := indexed.Get("bench", start, start+200); err != nil {
			b.Fatalf("[%d, %d): %v", start, start+200, err)
		}
	}
}
