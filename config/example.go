package config

var ExampleYaml = `
testing: false
local:
  host: broker.local
  port: 8883
  tls: true
  username: picam
  password: secret
  ca_cert: /etc/homewatch/ca.pem
feeds:
  camera: monitoring/camera
  recording: monitoring/recording
  motion: monitoring/motion
  storage: monitoring/file_storage
camera:
  protocol: libcamera
  capture_time: 5
  path: /home/picam/sec_cam
motion:
  source: topic
  pin: 1
  poll_interval: 250ms
storage:
  mode: local
  file_server:
    host: 192.168.68.10
    username: files
    password: hunter2
    path: /srv/captures
  dropbox:
    access_token: sl.abc
    folder: /Driveway
garage:
  pin: 3
  interval: 20
  feed: garage-door
  icon_feed: garage-door-icon
remote:
  host: io.adafruit.com
  username: someone
  password: aio_key
dashboard:
  date_feed: date
  time_feed: time
  weather:
    latitude: "19.64"
    longitude: "-155.99"
    api_key: owm
    feed: weather
    icon_feed: weather-icon
  calendar:
    id: family@group.calendar.google.com
    feed: calendar
`

var ExampleConfig, _ = OpenRaw([]byte(ExampleYaml))
