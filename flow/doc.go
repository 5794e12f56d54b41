// Package flow builds composable pipelines on top of a
// github.com/baxromumarov/csp.Channel and csp.Select: fan-in merge,
// time-partitioned batching, timeout channels, and element-mapping
// adapters.
//
// Every collaborator here that returns a channel owns it and closes it
// once its upstream inputs are exhausted or ctx is done, except
// MapWritable: the caller closes the channel MapWritable returns, and
// MapWritable closes the destination channel it was given. None of them
// retain goroutines past that point.
package flow
