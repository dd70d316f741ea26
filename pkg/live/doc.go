// Package live drives client-context documents from a browser over a
// WebSocket.
//
// A Session owns one dom.Document. Everything that touches the document,
// including the reactive effects bound into it, runs on the session's loop
// goroutine. After each task the document's mutation log is sent to the
// browser as a "patches" message; the browser sends back "event" and "attr"
// messages addressed by node ID.
//
// Wire format (JSON text frames):
//
//	server -> client  {"type":"init","session":"…","body":3,"document":1,"html":"…"}
//	server -> client  {"type":"patches","seq":1,"patches":[{"op":"setText","target":12,"value":"1"}]}
//	server -> client  {"type":"error","code":"E109","message":"…"}
//	client -> server  {"type":"event","target":"9","event":"click"}
//	client -> server  {"type":"attr","target":"9","key":"value","value":"x"}
//
// Pages served by Server.ServePage are rendered with node IDs (data-nid
// attributes and <!--t:ID--> markers before text nodes) so the client can
// address every node the patches refer to.
package live
