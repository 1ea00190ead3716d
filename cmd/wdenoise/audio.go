package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var errInvalidWAV = errors.New("invalid WAV file")

// processWAV denoises every channel of the WAV file at inPath and writes
// the result with the same format to outPath.
func processWAV(ctx context.Context, j *job, inPath, outPath string) ([]report, error) {
	buf, err := readWAV(inPath)
	if err != nil {
		return nil, err
	}
	nch := buf.Format.NumChannels
	j.log.Debug("read wav",
		slog.String("path", inPath),
		slog.Int("channels", nch),
		slog.Int("sample_rate", buf.Format.SampleRate),
		slog.Int("bit_depth", buf.SourceBitDepth),
	)

	scale, bias := fullScale(buf.SourceBitDepth), pcmBias(buf.SourceBitDepth)
	channels := deinterleave(buf.Data, nch, scale, bias)
	reports := make([]report, nch)
	for ch, x := range channels {
		y, rep, err := j.denoiseSeries(ctx, x)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		rep.channel = ch
		reports[ch] = rep
		channels[ch] = y
	}
	interleave(buf.Data, channels, scale, bias)

	if err := writeWAV(outPath, buf); err != nil {
		return nil, err
	}
	return reports, nil
}

func readWAV(path string) (*audio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", errInvalidWAV, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: no channels", errInvalidWAV)
	}
	if buf.SourceBitDepth == 0 {
		buf.SourceBitDepth = int(dec.BitDepth)
	}
	return buf, nil
}

func writeWAV(path string, buf *audio.IntBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output file creation error: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("data writing error: %w", err)
	}
	return enc.Close()
}

// fullScale is the magnitude of the most negative PCM value.
func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	return math.Ldexp(1, bitDepth-1)
}

// pcmBias is the stored value of digital silence. 8-bit WAV is unsigned
// (0..255 around 128); wider depths are signed around 0.
func pcmBias(bitDepth int) int {
	if bitDepth == 8 {
		return 128
	}
	return 0
}

// deinterleave splits interleaved PCM into per-channel series scaled to
// [-1, 1), removing bias first. A trailing partial frame is dropped.
func deinterleave(data []int, nch int, scale float64, bias int) [][]float64 {
	frames := len(data) / nch
	out := make([][]float64, nch)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}
	for i := range frames {
		for ch := range nch {
			out[ch][i] = float64(data[i*nch+ch]-bias) / scale
		}
	}
	return out
}

// interleave writes per-channel series back into data, rounding and
// clipping to the signed PCM range before adding bias.
func interleave(data []int, channels [][]float64, scale float64, bias int) {
	nch := len(channels)
	lo, hi := -scale, scale-1
	for ch, x := range channels {
		for i, v := range x {
			s := math.Round(v * scale)
			data[i*nch+ch] = int(math.Max(lo, math.Min(hi, s))) + bias
		}
	}
}

// processText reads whitespace separated numbers from r, denoises them
// as one series and writes the result to w, one value per line.
func processText(ctx context.Context, j *job, r io.Reader, w io.Writer) (report, error) {
	x, err := readSeries(r)
	if err != nil {
		return report{}, err
	}
	y, rep, err := j.denoiseSeries(ctx, x)
	if err != nil {
		return report{}, err
	}
	return rep, writeSeries(w, y)
}

func readSeries(r io.Reader) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var x []float64
	for sc.Scan() {
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(x)+1, err)
		}
		x = append(x, v)
	}
	return x, sc.Err()
}

func writeSeries(w io.Writer, x []float64) error {
	bw := bufio.NewWriter(w)
	for _, v := range x {
		bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func printReport(w io.Writer, reports []report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tSamples\tSigma\tThreshold\tIn [dBFS]\tOut [dBFS]\tRemoved RMS\tEst. SNR [dB]\n")
	fmt.Fprintf(tw, "-------\t-------\t-----\t---------\t---------\t----------\t-----------\t-------------\n")
	for _, r := range reports {
		q := r.quality
		fmt.Fprintf(tw, "%d\t%d\t%.6f\t%.6f\t%.2f\t%.2f\t%.6f\t%.2f\n",
			r.channel, r.samples, r.sigma, r.threshold,
			q.InputRMS_dB, q.OutputRMS_dB, q.ResidualRMS, q.EstimatedSNR_dB)
	}
	return tw.Flush()
}
