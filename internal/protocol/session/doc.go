// Package session follows the namespace a captured connection is in.
//
// A Minecraft connection changes state mid-stream: the handshake picks
// status or login, a successful login switches to play. Each state has its
// own packet ids, so a capture can only be decoded if the decoder knows
// which namespace applies to each frame. A Tracker holds that namespace and
// moves it according to Rules as packets are observed.
package session
