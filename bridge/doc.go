// Package bridge runs the interactive serial-to-cloud session.
//
// Two loops share one serial transport:
//
//   - The Transmitter runs in the foreground. It reads operator keystrokes into a
//     bounded line buffer and, on newline, writes the line followed by a carriage
//     return to the device.
//   - The Receiver runs in the background. It reassembles device responses with a
//     frame.Accumulator, prints each one, and uploads numeric responses through a
//     ValueSaver (the ubidots client).
//
// Both loops print through one Console, whose lock keeps a response, its upload
// status and the prompt redraw together on the terminal.
//
// An upload blocks the Receiver for the HTTP round trip, so the next device
// response is processed only after the previous upload finished or failed.
// Uploads are not retried; a failed upload is reported on the console and the
// sample is dropped.
package bridge
