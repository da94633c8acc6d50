package kestrel

// Version is the current Kestrel version
const Version = "0.1.0"
