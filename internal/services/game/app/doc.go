// Package server hosts the game HTTP/WebSocket process.
//
// Each websocket connection owns one session over the configured scenario.
// Frames mutate the session under the connection lock; assistant calls run
// outside it so a slow model never blocks play.
package server
