package services

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/pubsub"
	"github.com/homewatch/homewatch/pubsub/dryrun"
	"github.com/homewatch/homewatch/pubsub/mqtt"
	"github.com/pkg/errors"
)

// Service interface
type Service interface {
	ID() string
	Run() error
}

// ServiceInit interface
type ServiceInit interface {
	Service
	Init() error
}

var serviceMap map[string]Service = map[string]Service{}
var enabled []Service
var Config *config.Config

// Local broker endpoints
var Publisher pubsub.Publisher
var Subscriber pubsub.Subscriber

// Remote (dashboard) broker publisher
var RemotePublisher pubsub.Publisher

var brokers []*mqtt.Broker
var reconnecting sync.Mutex

func SetupLogging(filename string) error {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	if filename == "" {
		log.SetOutput(os.Stdout)
		return nil
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "opening log file")
	}
	log.SetOutput(file)
	return nil
}

func brokerOptions(name string, conf config.BrokerConf, testing bool) mqtt.Options {
	return mqtt.Options{
		Name:       name,
		Host:       conf.Host,
		Port:       conf.Port,
		TLS:        conf.TLS,
		Username:   conf.Username,
		Password:   conf.Password,
		CACert:     conf.CACert,
		ClientCert: conf.ClientCert,
		ClientKey:  conf.ClientKey,
		Testing:    testing,
	}
}

func connectBroker(opts mqtt.Options) (*mqtt.Broker, error) {
	broker, err := mqtt.NewBroker(opts)
	if err != nil {
		return nil, err
	}
	if err := broker.Connect(); err != nil {
		return nil, err
	}
	brokers = append(brokers, broker)
	return broker, nil
}

// SetupBroker connects to the local broker, and the remote broker when one
// is configured. With the testing flag set publishes are only logged.
func SetupBroker(name string) error {
	testing := Config.Testing
	if Config.Local.Host != "" {
		broker, err := connectBroker(brokerOptions(name, Config.Local, testing))
		if err != nil {
			return err
		}
		Subscriber = broker.Subscriber()
		if testing {
			Publisher = &dryrun.Publisher{Name: name}
		} else {
			Publisher = Metered(broker.Publisher())
		}
	}
	if Config.Remote.Host != "" {
		broker, err := connectBroker(brokerOptions(name, Config.Remote, testing))
		if err != nil {
			return err
		}
		if testing {
			RemotePublisher = &dryrun.Publisher{Name: name + " remote"}
		} else {
			RemotePublisher = Metered(broker.Publisher())
		}
	}
	if len(brokers) == 0 {
		return errors.New("no mqtt broker configured: set MQTT_LOCAL_SERVER or MQTT_REMOTE_SERVER")
	}
	return nil
}

// EnsureConnected reconnects any broker whose connection dropped. Called
// at the top of each service loop.
func EnsureConnected() error {
	reconnecting.Lock()
	defer reconnecting.Unlock()
	for _, broker := range brokers {
		if err := broker.EnsureConnected(); err != nil {
			return err
		}
	}
	return nil
}

func Shutdown() {
	for _, broker := range brokers {
		broker.Disconnect()
	}
	brokers = nil
}

func Launch(ss []string) {
	enabled = []Service{}
	for _, name := range ss {
		if service, ok := serviceMap[name]; ok {
			enabled = append(enabled, service)
		} else {
			log.Fatalf("Service %s does not exist", name)
		}
	}
	if len(enabled) == 0 {
		log.Fatalln("No services to run")
	}

	if err := SetupBroker(enabled[0].ID()); err != nil {
		log.Fatalln("Error connecting:", err)
	}

	if Config.Http != "" {
		go ServeHTTP(Config.Http)
	}

	for _, service := range enabled {
		log.Printf("Starting %s\n", service.ID())
		if service, ok := service.(ServiceInit); ok {
			err := service.Init()
			if err != nil {
				log.Fatalf("Error init service %s: %s", service.ID(), err.Error())
			}
			log.Printf("Initialized %s\n", service.ID())
		}
	}

	errs := make(chan error, len(enabled))
	for _, service := range enabled {
		if Config.Heartbeat != "" {
			go Heartbeat(service.ID())
		}
		go func(service Service) {
			err := service.Run()
			if err == nil {
				err = errors.New("exited")
			}
			errs <- errors.Wrapf(err, "service %s", service.ID())
		}(service)
	}
	err := <-errs
	Shutdown()
	log.Fatalln("Error running", err)
}

type heartbeat struct {
	Pid     int    `json:"pid"`
	Started string `json:"started"`
	Uptime  int    `json:"uptime"`
}

func heartbeatPublisher() pubsub.Publisher {
	if Publisher != nil {
		return Publisher
	}
	return RemotePublisher
}

func heartbeatMessage(id string, started, now time.Time) *pubsub.Message {
	data, _ := json.Marshal(heartbeat{
		Pid:     os.Getpid(),
		Started: started.Format(time.RFC3339),
		Uptime:  int(now.Sub(started).Seconds()),
	})
	msg := pubsub.NewMessage(Config.Heartbeat+"/"+id, data)
	msg.SetRetained(true)
	return msg
}

func Heartbeat(id string) {
	started := time.Now()

	// wait 5 seconds before heartbeating - if the process dies very soon
	time.Sleep(time.Second * 5)

	for {
		msg := heartbeatMessage(id, started, time.Now())
		if err := heartbeatPublisher().Publish(msg); err != nil {
			log.Println("Error publishing heartbeat:", err)
		}
		time.Sleep(time.Second * 60)
	}
}

func Register(service Service) {
	if _, exists := serviceMap[service.ID()]; exists {
		log.Fatalf("Duplicate service registered: %s", service.ID())
	}
	serviceMap[service.ID()] = service
}

// Registered service names, sorted.
func Registered() []string {
	var names []string
	for name := range serviceMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
