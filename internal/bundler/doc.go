// Package bundler implements one build pass: it loads the manifest,
// concatenates each script category into a bundle, writes the bundles and
// regenerates the resource descriptor that references them.
//
// A pass is idempotent. Running it twice over unchanged inputs produces
// byte-identical outputs, because nothing time- or run-dependent is written
// to disk. All categories are aggregated in memory before the first write,
// and every output file is replaced atomically, so a failing pass never
// leaves a truncated bundle behind. The descriptor is written last.
package bundler
