// Package win holds the window helpers the Windows backend needs beyond
// lxn/win: window validation, client size and a GDI capture of a window's
// client area.
package win
