package upscale

import (
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Default seeds of the generators which are not tied to a clone index.
const (
	DefaultCountSeed  = 42
	DefaultSampleSeed = 4711
)

// Counts summarizes one run of an Upscaler.
type Counts struct {
	Read           int
	DroppedTransit int
	Skipped        int
	Cloned         int
	Captured       int

	// Written holds the number of persons written to each sampled sink, in
	// sink order.
	Written []int
}

// Upscaler streams persons from a Source through sanitizing, transit
// filtering, cloning, mode normalization and vehicle assignment, and fans
// every resulting person out to its sinks.
type Upscaler struct {
	factor           float64
	cloneConcurrency int
	skipInvalid      bool
	countSeed        int64
	sampleSeed       int64
	coordJitter      float64
	timeJitter       float64
	transitMode      string
	mainModes        MainModeIdentifier
	facilities       FacilityResolver
	registry         VehicleRegistry
	vehicleModes     [2][]string
	router           Router
	sinks            []SampledSink
	capture          Sink
	captureID        string

	sanitizer  *Sanitizer
	filter     TransitFilter
	cloner     *Cloner
	normalizer *ModeNormalizer
	assigner   *VehicleAssigner
	planRouter *PlanRouter
	fanOut     *FanOut
	countRnd   *rand.Rand

	stats Statter
	log   Logger
}

// UpscalerOption is a functional option for NewUpscaler.
type UpscalerOption func(u *Upscaler) error

// MaxFactor is the largest upscaling factor. Every clone index holds its own
// generator for the whole run.
const MaxFactor = 1000

// OptUpscalerFactor sets the upscaling factor, which must be within
// [1,MaxFactor].
func OptUpscalerFactor(factor float64) UpscalerOption {
	return func(u *Upscaler) error {
		if !(factor >= 1 && factor <= MaxFactor) {
			return errors.Errorf("upscaling factor must be within [1,%d], got %v", MaxFactor, factor)
		}
		u.factor = factor
		return nil
	}
}

// OptUpscalerSinks adds sampled sinks. Sinks are closed at the end of
// Process.
func OptUpscalerSinks(sinks ...SampledSink) UpscalerOption {
	return func(u *Upscaler) error {
		for _, s := range sinks {
			if s.Probability < 0 || s.Probability > 1 {
				return errors.Errorf("sample probability must be within [0,1], got %v", s.Probability)
			}
		}
		u.sinks = append(u.sinks, sinks...)
		return nil
	}
}

// OptUpscalerCapture sets a sink receiving a single person: the first one,
// or the one with id if id is not empty.
func OptUpscalerCapture(s Sink, id string) UpscalerOption {
	return func(u *Upscaler) error {
		u.capture = s
		u.captureID = id
		return nil
	}
}

// OptUpscalerFacilities sets the resolver used to repair activities without
// a link.
func OptUpscalerFacilities(f FacilityResolver) UpscalerOption {
	return func(u *Upscaler) error {
		u.facilities = f
		return nil
	}
}

// OptUpscalerMainModes sets the identifier used for multi-leg trips without a
// routing mode. Without it, such trips are an UnresolvedRoutingModeError.
func OptUpscalerMainModes(m MainModeIdentifier) UpscalerOption {
	return func(u *Upscaler) error {
		u.mainModes = m
		return nil
	}
}

// OptUpscalerVehicles sets the vehicle registry and the modes which get a
// vehicle: the union of the simulated main modes and the network modes.
func OptUpscalerVehicles(registry VehicleRegistry, mainModes, networkModes []string) UpscalerOption {
	return func(u *Upscaler) error {
		if registry == nil {
			return errors.New("nil vehicle registry")
		}
		u.registry = registry
		u.vehicleModes = [2][]string{mainModes, networkModes}
		return nil
	}
}

// OptUpscalerRouter makes the upscaler route the plans of clones.
func OptUpscalerRouter(r Router) UpscalerOption {
	return func(u *Upscaler) error {
		u.router = r
		return nil
	}
}

// OptUpscalerTransitMode sets the mode which makes a person a transit user.
func OptUpscalerTransitMode(mode string) UpscalerOption {
	return func(u *Upscaler) error {
		u.transitMode = mode
		return nil
	}
}

// OptUpscalerSeeds sets the seeds of the clone count generator and of the
// sampling generator.
func OptUpscalerSeeds(countSeed, sampleSeed int64) UpscalerOption {
	return func(u *Upscaler) error {
		u.countSeed = countSeed
		u.sampleSeed = sampleSeed
		return nil
	}
}

// OptUpscalerJitter sets how far clones' coordinates (in coordinate units)
// and times (in seconds) may move from the original.
func OptUpscalerJitter(coord, time float64) UpscalerOption {
	return func(u *Upscaler) error {
		if coord < 0 || time < 0 {
			return errors.Errorf("jitter widths must not be negative, got %v and %v", coord, time)
		}
		u.coordJitter = coord
		u.timeJitter = time
		return nil
	}
}

// OptUpscalerCloneConcurrency sets how many clones of a person are built at
// once.
func OptUpscalerCloneConcurrency(n int) UpscalerOption {
	return func(u *Upscaler) error {
		if n < 1 {
			return errors.Errorf("clone concurrency must be positive, got %d", n)
		}
		u.cloneConcurrency = n
		return nil
	}
}

// OptUpscalerSkipInvalid makes the upscaler drop and log persons with
// missing facilities or inconsistent routing modes instead of aborting.
// Structural errors abort regardless.
func OptUpscalerSkipInvalid(skip bool) UpscalerOption {
	return func(u *Upscaler) error {
		u.skipInvalid = skip
		return nil
	}
}

// OptUpscalerLogger sets the logger.
func OptUpscalerLogger(l Logger) UpscalerOption {
	return func(u *Upscaler) error {
		u.log = l
		return nil
	}
}

// OptUpscalerStatter sets the stats collector.
func OptUpscalerStatter(s Statter) UpscalerOption {
	return func(u *Upscaler) error {
		u.stats = s
		return nil
	}
}

// NewUpscaler returns an Upscaler configured by opts. Without options it
// passes every non-transit person through once, to no sink.
func NewUpscaler(opts ...UpscalerOption) (*Upscaler, error) {
	u := &Upscaler{
		factor:           1,
		cloneConcurrency: 1,
		countSeed:        DefaultCountSeed,
		sampleSeed:       DefaultSampleSeed,
		coordJitter:      DefaultCoordJitter,
		timeJitter:       DefaultTimeJitter,
		transitMode:      ModePT,
		registry:         NewMemVehicles(),
		vehicleModes:     [2][]string{{ModeCar}, {ModeCar}},
		stats:            NopStatter{},
		log:              NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(u); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}

	u.sanitizer = &Sanitizer{Facilities: u.facilities, Log: u.log}
	u.filter = TransitFilter{Mode: u.transitMode}
	cloneModes := u.mainModes
	if cloneModes == nil {
		cloneModes = DefaultMainModeIdentifier{}
	}
	u.cloner = NewCloner(NewRandomStreams(u.factor), cloneModes)
	u.cloner.CoordJitter = u.coordJitter
	u.cloner.TimeJitter = u.timeJitter
	u.normalizer = &ModeNormalizer{MainModes: u.mainModes, Log: u.log}
	u.assigner = NewVehicleAssigner(u.registry, u.vehicleModes[0], u.vehicleModes[1])
	if u.router != nil {
		u.planRouter = &PlanRouter{Router: u.router}
	}
	var fanOpts []FanOutOption
	if u.capture != nil {
		fanOpts = append(fanOpts, OptFanOutCapture(u.capture, u.captureID))
	}
	u.fanOut = NewFanOut(rand.New(rand.NewSource(u.sampleSeed)), u.sinks, fanOpts...)
	u.countRnd = rand.New(rand.NewSource(u.countSeed))
	return u, nil
}

// Process reads src until io.EOF, writing the original and the clones of each
// retained person to the sinks. Persons are handled one at a time in input
// order. All sinks are closed when Process returns.
func (u *Upscaler) Process(src Source) (counts Counts, err error) {
	start := time.Now()
	defer func() {
		cerr := u.fanOut.Close()
		if err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing sinks")
		}
		counts.Written = u.fanOut.Written()
		if u.fanOut.Captured() {
			counts.Captured = 1
		}
		u.stats.Timing("upscale.duration", time.Since(start), 1)
	}()

	for {
		p, err := src.Person()
		if err == io.EOF {
			break
		} else if err != nil {
			return counts, errors.Wrap(err, "reading person")
		}
		counts.Read++
		u.stats.Count("person.read", 1, 1)

		persons, err := u.processPerson(p)
		if err != nil {
			if u.skipInvalid && IsPersonError(err) {
				u.log.Printf("skipping person %s: %v", p.ID, err)
				counts.Skipped++
				u.stats.Count("person.skipped", 1, 1)
				continue
			}
			return counts, errors.Wrapf(err, "processing person %s", p.ID)
		}
		if persons == nil {
			counts.DroppedTransit++
			u.stats.Count("person.transit", 1, 1)
			continue
		}
		counts.Cloned += len(persons) - 1
		u.stats.Count("person.cloned", int64(len(persons)-1), 1)

		for _, fp := range persons {
			if err := u.fanOut.Write(fp); err != nil {
				return counts, errors.Wrap(err, "writing")
			}
		}
	}
	for i, n := range u.fanOut.Written() {
		u.stats.Gauge("sink."+strconv.Itoa(i)+".written", float64(n), 1)
	}
	u.log.Printf("read %d persons, dropped %d transit users, skipped %d, created %d clones",
		counts.Read, counts.DroppedTransit, counts.Skipped, counts.Cloned)
	return counts, nil
}

// processPerson returns p followed by its clones, or nil if p is a transit
// user. Nothing is written and no vehicle is registered for a person that
// fails.
func (u *Upscaler) processPerson(p *Person) ([]*Person, error) {
	if err := u.sanitizer.Sanitize(p); err != nil {
		return nil, err
	}
	if u.filter.IsTransitPerson(p) {
		u.log.Debugf("dropping transit user %s", p.ID)
		return nil, nil
	}
	if err := CheckPlan(p.SelectedPlan()); err != nil {
		if se, ok := err.(*StructuralInvariantError); ok {
			se.PersonID = p.ID
		}
		return nil, err
	}

	n := 0
	if u.cloner.Streams.Len() > 0 {
		n = CloneCount(u.factor, u.countRnd.Float64())
	}
	persons := make([]*Person, n+1)
	persons[0] = p

	g := errgroup.Group{}
	g.SetLimit(u.cloneConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			c, err := u.cloner.Clone(p, i)
			if err != nil {
				return err
			}
			if err := u.normalizer.Normalize(c); err != nil {
				return err
			}
			if u.planRouter != nil {
				if err := u.planRouter.RoutePlan(c.SelectedPlan()); err != nil {
					return errors.Wrapf(err, "routing clone %s", c.ID)
				}
			}
			persons[i+1] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := u.normalizer.Normalize(p); err != nil {
		return nil, err
	}

	for _, fp := range persons {
		if err := u.assigner.Assign(fp); err != nil {
			return nil, err
		}
		u.stats.Count("vehicle.registered", int64(len(u.assigner.Modes())), 1)
	}
	return persons, nil
}
