package main

//
// bio-srna
//
// This application curates candidate small non-coding RNAs from an assembled
// transcriptome, in two phases
//
//   1. classify every assembled transcript against the ORF catalog and,
//      optionally, a reference annotation; keep the transcripts both passes
//      call non-coding; drop candidates near contig edges; write the
//      survivors to -rio-output, -gtf-output and -fasta-output.
//
//   2. filter the phase-1 set by re-predicted ORF content, the size window,
//      and homology evidence, writing the final set in -filtered-output.
//
// Example 1: run both phases
//
//    bio-srna -transcripts assembled.gtf -orfs orfs.gtf -annotation ref.gtf \
//      -genome genome.fa -genome-index genome.fa.fai
//
// Example 2: rerun only the filtering phase using the previous checkpoint
//
//    bio-srna -rio-input phase1.rio -orf-predictions repredicted.gtf \
//      -protein-hits protein.tsv -rna-hits families.tbl

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/srna/cmd/bio-srna/pipeline"
	"github.com/grailbio/srna/curate"
	"github.com/grailbio/srna/encoding/fasta"
	"github.com/grailbio/srna/gff"
	"github.com/grailbio/srna/interval"
)

var (
	transcriptsPath   = flag.String("transcripts", "", "Assembled transcript GTF; required unless -rio-input is set")
	orfsPath          = flag.String("orfs", "", "ORF catalog GTF; required unless -rio-input is set")
	annotationPath    = flag.String("annotation", "", "Reference annotation GTF for the second classification pass; empty runs the ORF pass only")
	genomePath        = flag.String("genome", "", "Genome FASTA for transcript sequence extraction; empty skips FASTA outputs")
	genomeIndexPath   = flag.String("genome-index", "", "FASTA index (.fai) for -genome; empty loads the genome into memory")
	contigLengthsPath = flag.String("contig-lengths", "", "Contig length table (.fai or .dict). Defaults to -genome-index, then -genome + .fai")

	rioOutputPath   = flag.String("rio-output", "./phase1.rio", "Recordio checkpoint storing the consolidated transcript set")
	gtfOutputPath   = flag.String("gtf-output", "./consolidated.gtf", "GTF file storing the consolidated transcript set")
	fastaOutputPath = flag.String("fasta-output", "./consolidated.fa", "FASTA file storing consolidated transcript sequences; requires -genome")
	rioInputPath    = flag.String("rio-input", "", "If nonempty, skip classification and run only the filtering phase over this checkpoint")

	orfPredictionsPath = flag.String("orf-predictions", "", "GTF of ORFs re-predicted on the extracted transcript sequences; empty skips the ORF-content filter")
	proteinHitsPath    = flag.String("protein-hits", "", "14-column protein homology table; empty skips the protein filter")
	rnaHitsPath        = flag.String("rna-hits", "", "RNA family scan table; empty skips the RNA family filter")
	hitListPath        = flag.String("hit-list", "", "Extra transcript IDs to remove, one per line")
	filteredOutputPath = flag.String("filtered-output", "./filtered.gtf", "GTF file storing the final transcript set")
	filteredFastaPath  = flag.String("filtered-fasta", "", "FASTA file storing final transcript sequences; requires -genome")
	markerDir          = flag.String("marker-dir", "", "Directory for stage markers; empty disables resumption")

	intergenicMargin    = flag.Int("intergenic-margin", int(curate.DefaultOpts.IntergenicMargin), "Minimum distance to the nearest catalog feature for an intergenic call")
	antisenseMinOverlap = flag.Int("antisense-min-overlap", int(curate.DefaultOpts.AntisenseMinOverlap), "Minimum opposite-strand overlap for an antisense call")
	peptideMaxLen       = flag.Int("peptide-max-len", int(curate.DefaultOpts.PeptideMaxLen), "Same-strand ORFs shorter than this are ignored when the transcript is -peptide-min-ratio times longer")
	peptideMinRatio     = flag.Int("peptide-min-ratio", int(curate.DefaultOpts.PeptideMinRatio), "Transcript/ORF length ratio above which a short same-strand ORF is ignored")
	minContigLen        = flag.Int("min-contig-len", int(curate.DefaultOpts.MinContigLen), "Transcripts on contigs shorter than this are dropped")
	edgeMargin          = flag.Int("edge-margin", int(curate.DefaultOpts.EdgeMargin), "Base margin at each contig end; transcripts inside it are dropped")
	edgeScaleLen        = flag.Int("edge-scale-len", int(curate.DefaultOpts.EdgeScaleLen), "Contig length at which the edge margin doubles; shorter contigs get wider margins")
	maxORFRatio         = flag.Float64("max-orf-ratio", curate.DefaultOpts.MaxORFRatio, "Transcripts whose longest re-predicted ORF covers more than this fraction are dropped")
	minLen              = flag.Int("min-len", int(curate.DefaultOpts.MinLen), "Minimum transcript length")
	maxLen              = flag.Int("max-len", int(curate.DefaultOpts.MaxLen), "Maximum transcript length")
	minBitScore         = flag.Float64("min-bit-score", curate.DefaultOpts.MinBitScore, "Protein alignments at or below this bit score are ignored")
	maxEValue           = flag.Float64("max-e-value", curate.DefaultOpts.MaxEValue, "Protein alignments at or above this e-value are ignored")
	minPctIdentity      = flag.Float64("min-pct-identity", curate.DefaultOpts.MinPctIdentity, "Protein alignments at or below this percent identity are ignored")
	rnaFamilyExclude    = flag.String("rna-family-exclude", curate.DefaultOpts.RNAFamilyExclude, "RNA families matching this pattern do not count as homology hits; empty counts every family")
	parallelism         = flag.Int("parallelism", curate.DefaultOpts.Parallelism, "Maximum number of concurrent classification jobs; 0 = runtime.NumCPU()")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [OPTIONS]

Phase 1 requires -transcripts and -orfs plus a contig length table
(-contig-lengths, -genome-index, or -genome). Phase 2 runs over the phase-1
checkpoint; set -rio-input to run it alone.

Options:
`, os.Args[0])
	flag.PrintDefaults()
}

func optsFromFlags() curate.Opts {
	return curate.Opts{
		IntergenicMargin:    interval.PosType(*intergenicMargin),
		AntisenseMinOverlap: interval.PosType(*antisenseMinOverlap),
		PeptideMaxLen:       interval.PosType(*peptideMaxLen),
		PeptideMinRatio:     interval.PosType(*peptideMinRatio),
		MinContigLen:        interval.PosType(*minContigLen),
		EdgeMargin:          interval.PosType(*edgeMargin),
		EdgeScaleLen:        interval.PosType(*edgeScaleLen),
		MaxORFRatio:         *maxORFRatio,
		MinLen:              interval.PosType(*minLen),
		MaxLen:              interval.PosType(*maxLen),
		MinBitScore:         *minBitScore,
		MaxEValue:           *maxEValue,
		MinPctIdentity:      *minPctIdentity,
		RNAFamilyExclude:    *rnaFamilyExclude,
		Parallelism:         *parallelism,
	}
}

// contigLengths resolves and reads the contig length table. Without any
// index it falls back to scanning the genome itself.
func contigLengths(ctx context.Context) fasta.Lengths {
	path := *contigLengthsPath
	if path == "" {
		path = *genomeIndexPath
	}
	if path == "" && *genomePath != "" {
		fai := *genomePath + ".fai"
		if _, err := file.Stat(ctx, fai); err == nil {
			path = fai
		} else {
			lengths, err := scanGenomeLengths(ctx)
			if err != nil {
				log.Panic(err)
			}
			log.Printf("Read %d contig lengths by scanning %s", len(lengths), *genomePath)
			return lengths
		}
	}
	if path == "" {
		log.Fatal("the classification phase needs a contig length table; set -contig-lengths, -genome-index, or -genome")
	}
	lengths, err := fasta.ReadLengthsPath(ctx, path)
	if err != nil {
		log.Panic(err)
	}
	log.Printf("Read %d contig lengths from %s", len(lengths), path)
	return lengths
}

// scanGenomeLengths indexes the genome in memory to recover contig lengths
// when no on-disk index exists.
func scanGenomeLengths(ctx context.Context) (fasta.Lengths, error) {
	in, err := file.Open(ctx, *genomePath)
	if err != nil {
		return nil, err
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, *genomePath); u != nil {
		r = u
	}
	var idx bytes.Buffer
	err = fasta.GenerateIndex(&idx, r)
	if e := in.Close(ctx); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return nil, err
	}
	return fasta.ReadLengths(&idx)
}

// openGenome opens the genome FASTA, indexed when -genome-index is set. The
// returned cleanup must be called after the last Get.
func openGenome(ctx context.Context) (fasta.Fasta, func()) {
	in, err := file.Open(ctx, *genomePath)
	if err != nil {
		log.Panic(err)
	}
	closeIn := func() {
		if err := in.Close(ctx); err != nil {
			log.Panic(err)
		}
	}
	if *genomeIndexPath != "" {
		idx, err := file.Open(ctx, *genomeIndexPath)
		if err != nil {
			log.Panic(err)
		}
		fa, err := fasta.NewIndexed(in.Reader(ctx), idx.Reader(ctx))
		if err != nil {
			log.Panic(err)
		}
		return fa, func() {
			if err := idx.Close(ctx); err != nil {
				log.Panic(err)
			}
			closeIn()
		}
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, *genomePath); u != nil {
		r = u
	}
	fa, err := fasta.New(r)
	if err != nil {
		log.Panic(err)
	}
	return fa, closeIn
}

// readCatalog reads a GTF feature catalog into an overlap index.
func readCatalog(ctx context.Context, path string) (*interval.Index, int) {
	recs, err := gff.ReadPath(ctx, path)
	if err != nil {
		log.Panic(err)
	}
	ix, err := curate.NewFeatureIndex(recs)
	if err != nil {
		log.Panic(err)
	}
	return ix, len(recs)
}

// classifyPhase runs the two classification passes and consolidation, then
// drops contig-edge candidates. The returned stats describe the ORF pass.
func classifyPhase(ctx context.Context, opts curate.Opts) ([]curate.Transcript, curate.Stats) {
	recs, err := gff.ReadPath(ctx, *transcriptsPath)
	if err != nil {
		log.Panic(err)
	}
	ts, err := curate.NewTranscripts(curate.SelectTranscripts(recs))
	if err != nil {
		log.Panic(err)
	}
	log.Printf("Read %d transcripts from %s", len(ts), *transcriptsPath)

	orfIx, nORFs := readCatalog(ctx, *orfsPath)
	log.Printf("Read %d ORF records from %s", nORFs, *orfsPath)
	orfClasses, orfStats := curate.ClassifySet(ts, orfIx, opts)
	log.Printf("Stats: ORF pass %+v", orfStats)

	var annoClasses []curate.Class
	if *annotationPath != "" {
		annoIx, nAnno := readCatalog(ctx, *annotationPath)
		log.Printf("Read %d annotation records from %s", nAnno, *annotationPath)
		var annoStats curate.Stats
		annoClasses, annoStats = curate.ClassifySet(ts, annoIx, opts)
		log.Printf("Stats: annotation pass %+v", annoStats)
	}

	consolidated := curate.Consolidate(ts, orfClasses, annoClasses)
	log.Printf("Stats: %d of %d transcripts non-coding in every pass", len(consolidated), len(ts))

	lengths := contigLengths(ctx)
	policy := curate.ScaledEdgeMargin(opts.EdgeMargin, opts.EdgeScaleLen)
	kept, err := curate.FilterEdges(consolidated, lengths, policy, opts.MinContigLen)
	if err != nil {
		log.Panic(err)
	}
	log.Printf("Stats: %d of %d transcripts away from contig edges", len(kept), len(consolidated))
	return kept, orfStats
}

// writeSequences extracts transcript sequences into a FASTA file.
func writeSequences(ctx context.Context, path string, ts []curate.Transcript) {
	fa, cleanup := openGenome(ctx)
	defer cleanup()
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Panic(err)
	}
	if err := curate.Extract(out.Writer(ctx), fa, ts); err != nil {
		log.Panic(err)
	}
	if err := out.Close(ctx); err != nil {
		log.Panic(err)
	}
	log.Printf("Wrote %d sequences to %s", len(ts), path)
}

// filterPhase applies the ORF-content, size, and homology filters.
func filterPhase(ctx context.Context, ts []curate.Transcript, opts curate.Opts) []curate.Transcript {
	if *orfPredictionsPath != "" {
		orfs, err := gff.ReadPath(ctx, *orfPredictionsPath)
		if err != nil {
			log.Panic(err)
		}
		n := len(ts)
		ts = curate.FilterORFContent(ts, orfs, opts.MaxORFRatio)
		log.Printf("Stats: %d of %d transcripts below the ORF-content cap", len(ts), n)
	} else {
		log.Error.Printf("-orf-predictions not set; skipping the ORF-content filter")
	}

	n := len(ts)
	ts = curate.FilterSize(ts, opts.MinLen, opts.MaxLen)
	log.Printf("Stats: %d of %d transcripts inside [%d, %d]", len(ts), n, opts.MinLen, opts.MaxLen)

	if *proteinHitsPath != "" {
		hits, err := curate.ReadProteinHitsPath(ctx, *proteinHitsPath, opts)
		if err != nil {
			log.Panic(err)
		}
		n := len(ts)
		ts = curate.FilterHomology(ts, hits)
		log.Printf("Stats: %d of %d transcripts without protein homology (%d queries flagged)", len(ts), n, len(hits))
	} else {
		log.Error.Printf("-protein-hits not set; skipping the protein homology filter")
	}

	if *rnaHitsPath != "" {
		var exclude *regexp.Regexp
		if opts.RNAFamilyExclude != "" {
			var err error
			if exclude, err = regexp.Compile(opts.RNAFamilyExclude); err != nil {
				log.Fatalf("-rna-family-exclude %q: %v", opts.RNAFamilyExclude, err)
			}
		}
		hits, err := curate.ReadRNAFamilyHitsPath(ctx, *rnaHitsPath, exclude)
		if err != nil {
			log.Panic(err)
		}
		n := len(ts)
		ts = curate.FilterHomology(ts, hits)
		log.Printf("Stats: %d of %d transcripts without RNA family homology (%d queries flagged)", len(ts), n, len(hits))
	} else {
		log.Error.Printf("-rna-hits not set; skipping the RNA family filter")
	}

	if *hitListPath != "" {
		hits, err := curate.ReadHitListPath(ctx, *hitListPath)
		if err != nil {
			log.Panic(err)
		}
		n := len(ts)
		ts = curate.FilterHomology(ts, hits)
		log.Printf("Stats: %d of %d transcripts not on the hit list", len(ts), n)
	}
	return ts
}

func main() {
	flag.Usage = usage
	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()
	opts := optsFromFlags()

	var (
		ts  []curate.Transcript
		err error
	)
	switch {
	case *rioInputPath != "":
		ts, opts, _, err = pipeline.ReadCheckpoint(ctx, *rioInputPath)
		if err != nil {
			log.Panic(err)
		}
		log.Printf("Read %d transcripts from %s", len(ts), *rioInputPath)
	default:
		if *transcriptsPath == "" || *orfsPath == "" {
			log.Fatal("-transcripts and -orfs are required (or set -rio-input to skip classification)")
		}
		phase1Inputs := []string{
			*transcriptsPath, *orfsPath, *annotationPath, *contigLengthsPath,
			*genomePath, *genomeIndexPath, fmt.Sprintf("%+v", opts),
		}
		if pipeline.StageDone(ctx, *markerDir, "classify", phase1Inputs) {
			ts, opts, _, err = pipeline.ReadCheckpoint(ctx, *rioOutputPath)
			if err != nil {
				log.Panic(err)
			}
			log.Printf("Resumed %d transcripts from %s", len(ts), *rioOutputPath)
			break
		}
		var stats curate.Stats
		ts, stats = classifyPhase(ctx, opts)
		if err := pipeline.WriteCheckpoint(ctx, *rioOutputPath, ts, opts, stats); err != nil {
			log.Panic(err)
		}
		if err := curate.WriteRecordsPath(ctx, *gtfOutputPath, ts); err != nil {
			log.Panic(err)
		}
		log.Printf("Wrote %d transcripts to %s and %s", len(ts), *rioOutputPath, *gtfOutputPath)
		if *genomePath != "" && *fastaOutputPath != "" {
			writeSequences(ctx, *fastaOutputPath, ts)
		} else {
			log.Error.Printf("-genome not set; skipping the consolidated FASTA output")
		}
		if err := pipeline.MarkStageDone(ctx, *markerDir, "classify", phase1Inputs); err != nil {
			log.Panic(err)
		}
	}

	ts = filterPhase(ctx, ts, opts)
	if err := curate.WriteRecordsPath(ctx, *filteredOutputPath, ts); err != nil {
		log.Panic(err)
	}
	log.Printf("Wrote %d transcripts to %s", len(ts), *filteredOutputPath)
	if *filteredFastaPath != "" {
		if *genomePath == "" {
			log.Fatal("-filtered-fasta requires -genome")
		}
		writeSequences(ctx, *filteredFastaPath, ts)
	}
	log.Printf("All done")
}
