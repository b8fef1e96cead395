package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pipelined.dev/engine"
	"pipelined.dev/engine/dag"
	"pipelined.dev/engine/graph"
	"pipelined.dev/engine/log"
	"pipelined.dev/engine/metric"
	"pipelined.dev/engine/process"
	"pipelined.dev/engine/processor"
	"pipelined.dev/engine/thread"
	"pipelined.dev/engine/wav"
)

type renderCommand struct {
	configPath string
	in         string
	out        string
	workers    int
	period     int
	logger     *logrus.Logger
}

func newRenderCommand(logger *logrus.Logger) *cobra.Command {
	r := &renderCommand{logger: logger}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a wav file through gain automation into another wav file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(r.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = r.workers
			}
			if cmd.Flags().Changed("period") {
				cfg.Period = r.period
			}
			_, err = render(cmd.Context(), cfg, r.in, r.out, r.logger)
			return err
		},
	}
	cmd.Flags().StringVarP(&r.configPath, "config", "c", "", "path to yaml config")
	cmd.Flags().StringVarP(&r.in, "in", "i", "", "input wav file")
	cmd.Flags().StringVarP(&r.out, "out", "o", "", "output wav file")
	cmd.Flags().IntVar(&r.workers, "workers", 0, "number of real-time worker threads")
	cmd.Flags().IntVar(&r.period, "period", 0, "frames per block")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// stats summarizes a render.
type stats struct {
	Frames int
	Load   float64
}

// session is the render graph:
//
//	player -> gain (one per channel) -> mix -> level meter
//	automation ----^
type session struct {
	executor   dag.Executor
	workers    []*thread.Worker
	sampleRate engine.SampleRate
	player     *processor.Player
	automation *processor.ValueIO[float64]
	meter      *processor.LevelMeter
	gains      []*graph.Node
}

func newSession(cfg config, input wav.Audio, logger log.Logger) (*session, error) {
	numChannels := len(input.Channels)
	s := &session{
		sampleRate: input.SampleRate,
		player:     processor.NewPlayer("input", input.Channels),
		automation: processor.NewValueIO[float64]("automation"),
		meter:      processor.NewLevelMeter("level", input.SampleRate, cfg.LevelWindow, processor.DefaultMinLevel),
		gains:      make([]*graph.Node, numChannels),
	}

	g := graph.New(cfg.Period, graph.WithLogger(log.With(logger, "graph")))
	player, err := g.Add(s.player)
	if err != nil {
		return nil, err
	}
	automation, err := g.Add(s.automation)
	if err != nil {
		return nil, err
	}
	mix, err := g.Add(processor.NewMix("mix", numChannels))
	if err != nil {
		return nil, err
	}
	meter, err := g.Add(s.meter)
	if err != nil {
		return nil, err
	}
	for c := range s.gains {
		if s.gains[c], err = g.Add(processor.NewGain(fmt.Sprintf("gain %d", c), cfg.Gain)); err != nil {
			return nil, err
		}
		if err := errors.Join(
			g.ConnectAudio(player, c, s.gains[c], 0),
			g.ConnectEvent(automation, 0, s.gains[c], 0),
			g.ConnectAudio(s.gains[c], 0, mix, c),
		); err != nil {
			return nil, err
		}
	}
	if err := g.ConnectAudio(mix, 0, meter, 0); err != nil {
		return nil, err
	}

	for i := 0; i < cfg.Workers; i++ {
		w := thread.NewWorker(cfg.WorkerThread)
		s.workers = append(s.workers, w)
		if err := w.Err(); err != nil {
			s.close()
			return nil, fmt.Errorf("worker %d: %w", i, err)
		}
	}
	if s.executor, err = g.Compile(s.workers...); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) close() {
	for _, w := range s.workers {
		w.Close()
	}
}

// render plays the input file through the session graph on a real-time
// process thread and writes the result.
func render(ctx context.Context, cfg config, in, out string, logger *logrus.Logger) (stats, error) {
	if err := cfg.validate(); err != nil {
		return stats{}, err
	}
	input, err := wav.Load(in)
	if err != nil {
		return stats{}, err
	}
	s, err := newSession(cfg, input, logger)
	if err != nil {
		return stats{}, err
	}
	defer s.close()

	writer, err := wav.Create(out, input.SampleRate, len(input.Channels), cfg.BitDepth)
	if err != nil {
		return stats{}, err
	}
	reporter := metric.NewReporter(prometheus.NewRegistry(),
		metric.WithInterval(cfg.MetricsInterval),
		metric.WithLogger(log.With(logger, "metric")),
	)
	reporter.Watch("level", s.meter.Levels())

	var (
		block    = make([][]float64, len(s.gains))
		position int
		next     int
	)
	processBlock := func() error {
		frames := min(cfg.Period, s.player.Remaining())
		if frames == 0 {
			return wav.ErrEndOfStream
		}
		for ; next < len(cfg.Automation) && s.sampleRate.FramesIn(cfg.Automation[next].At) <= position; next++ {
			s.automation.Set(cfg.Automation[next].Gain)
		}

		load := metric.StartLoad(frames, s.sampleRate)
		s.executor.Execute(frames)
		reporter.Measure(load.Stop())

		for c, n := range s.gains {
			block[c] = n.Result(0)[:frames]
		}
		position += frames
		return writer.Write(block)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	t := process.New(process.WithLogger(log.With(logger, "process")))
	t.Start(cfg.Thread, processBlock)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return reporter.Run(ctx)
	})
	eg.Go(func() error {
		<-ctx.Done()
		t.Stop()
		return nil
	})
	eg.Go(func() error {
		defer cancel()
		t.Wait()
		if err := t.Err(); err != nil && !errors.Is(err, wav.ErrEndOfStream) {
			return err
		}
		return nil
	})
	err = eg.Wait()
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return stats{}, err
	}

	result := stats{
		Frames: writer.Frames(),
		Load:   reporter.Load(),
	}
	logger.WithFields(logrus.Fields{
		"frames":  result.Frames,
		"blocks":  (result.Frames + cfg.Period - 1) / cfg.Period,
		"workers": cfg.Workers,
		"load":    fmt.Sprintf("%.3f", result.Load),
	}).Info("rendered ", out)
	return result, nil
}
