// Package manifest reads, checks and writes the Android packaging manifest
// (buildozer.spec) that turns the chat app into an APK.
//
// The manifest is an INI file with an [app] and a [buildozer] section. It is
// consumed once, at build time, by an external packaging tool; this package
// only makes sure the tool will be handed something sane. Recognised keys:
//
//	[app]        title, package.name, package.domain, source.dir,
//	             source.include_exts, requirements, orientation, fullscreen,
//	             android.permissions
//	[buildozer]  log_level, warn_on_root
//
// List values are comma separated. Any other key is reported as a warning by
// Validate, never rejected: the packaging tool understands many more.
package manifest
