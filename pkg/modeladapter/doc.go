// Package modeladapter defines the contract between the prompt client and the
// hosted model backends.
//
// It contains:
//   - [Generator] interface and [Response] type returned by every backend
//   - embeddable [ModelAdapter] base struct with HTTP helpers, auth, and custom headers
//   - the error taxonomy ([AuthenticationError], [InvalidModelError],
//     [TransportError], [EmptyResponseError], [StatusError]) and [Classify]
//
// Concrete backends live in separate packages under pkg/providers.
package modeladapter
