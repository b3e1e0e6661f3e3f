// Package natsservice exposes a validator.Action over NATS request/reply.
//
// Data payloads sent to Config.Subject are validated with the current
// validator and answered with the serialized report. The Shacl-Conforms
// and Shacl-Results headers summarize it and Content-Type names the output
// format. Failures are answered with an empty body and a Shacl-Error
// header.
//
// A JSON configuration object sent to Config.ConfigureSubject replaces the
// validator. A rejected configuration leaves the previous one in place.
//
// Every replica joins the same queue group, so each request is handled
// once.
package natsservice
