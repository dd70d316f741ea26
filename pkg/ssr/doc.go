// Package ssr holds the render-context split between server-side template
// generation and client-side execution.
//
// The process-wide context is Client unless SetDefault(Server) is called;
// documents may override it (see dom.WithContext). In server context,
// client-only callbacks never run and every custom element definition that
// gets defined is rendered once and handed to the OnServerDefine hooks,
// which typically merge it into page templates with InsertTemplates.
package ssr
