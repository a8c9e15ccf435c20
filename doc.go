// Package upscale turns a travel demand population into larger populations
// and samples of it. Persons are streamed through a fixed set of stages, one
// at a time, so that populations far larger than memory can be processed.
//
// 1. Source
//
//    A Source hands out one person at a time and returns io.EOF at the end.
//    Sources know how to get persons out of files, S3 buckets or Kafka topics;
//    they don't change them.
//
// 2. Sanitizer and TransitFilter
//
//    Every person is reduced to its selected plan. Activities without a link
//    get coordinate and link from their facility. Persons using public
//    transit are dropped: they can't be cloned without a transit schedule.
//
// 3. Cloner
//
//    For an upscaling factor F, each person gets floor(F)-1 clones, plus one
//    more with probability F-floor(F). A clone has every main activity of the
//    original moved by up to 100 units in space and 30 minutes in time, and a
//    single unrouted leg per trip. The i-th clone of every person draws from
//    the i-th generator of RandomStreams, so runs are reproducible.
//
// 4. ModeNormalizer and VehicleAssigner
//
//    Trips get one consistent routing mode and legacy walk modes are renamed.
//    Each person, original or clone, gets one vehicle per vehicle mode.
//
// 5. FanOut
//
//    Finished persons go to any number of sinks, each with a sample
//    probability. One random draw per person decides for all sinks at once,
//    which makes smaller samples subsets of larger ones.
//
// Upscaler wires the stages together.
package upscale
