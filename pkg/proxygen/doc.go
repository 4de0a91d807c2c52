// Package proxygen synthesizes JVM proxy classes at run time. Given a
// class name, access flags, and a set of interface contracts, Generate
// emits a complete class file whose every contracted operation forwards
// to a single interception handler, together with a name-routed dispatch
// path and the StackMapTable metadata the loader requires.
//
// The generated class extends java.lang.Object, implements the supplied
// contracts plus the dev.janus.runtime.Dispatcher interface, holds one
// private final handler field, and resolves every proxied method into a
// static slot during class initialization. Generation is pure: one call
// builds one artifact from in-memory structures and returns its bytes.
package proxygen
