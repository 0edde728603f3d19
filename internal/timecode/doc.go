// Package timecode validates and converts the mm:ss readings taken from a
// burnt-in on-screen clock, and picks the dominant reading out of a noisy
// series of OCR samples.
package timecode
