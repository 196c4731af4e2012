// Homewatch: driveway camera, motion, garage door and dashboard services
// for a Raspberry Pi, talking MQTT.
//
// Services
//
// - camera: on motion, publish a still and record a clip, then copy both to
// the file server and/or Dropbox
//
// - motion: PIR sensor publishing motion while no recording is in progress
//
// - garage: garage door reed switch reporting to the dashboard broker
//
// - dashboard: date, time, weather, air quality and calendar feeds
//
// Run one or more with:
//
//	homewatch run camera
//
// Configuration is read from .env, ~/.config/homewatch/homewatch.yml and the
// environment; see the config package.
package homewatch
