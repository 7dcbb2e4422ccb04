// Package types defines the declaration markers, plugin and descriptor types,
// behavior shapes, collaborator interfaces, and standard errors for the
// plumbing composition engine.
//
// A plugin declares named members. Members marked with Default or Extend are
// installed on the composed type as if declared there; members marked with
// PlumbMethod or PlumbProperty are threaded into a per-name chain where each
// layer receives the next layer as an explicit argument. The composed type is
// a Descriptor: a sealed table of compiled behaviors that callers dispatch
// through.
package types
