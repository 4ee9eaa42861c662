// Package mqtt connects SceneFlow Core to the message broker and turns
// scene lifecycle changes into events external tooling can watch.
//
// The coordinator hands events to an EventPublisher, which maps them to
// the topic tree under sceneflow/core (see topics.go) and publishes
// through the shared Client. The Client wraps paho.mqtt.golang with a
// clean session: subscriptions are tracked locally and replayed after
// every reconnect, and a retained Last Will on the system status topic
// lets subscribers distinguish a crash from a graceful Close.
//
// Typical wiring:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	coord.SetEventPublisher(mqtt.NewEventPublisher(client, byte(cfg.MQTT.QoS)))
//
// Subscribers use the same topic builders:
//
//	client.Subscribe(mqtt.Topics{}.AllSceneEvents(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("%s: %s", topic, payload)
//	        return nil
//	    })
//
// TLS and broker credentials come from the mqtt section of config.yaml;
// anonymous plaintext connections are for local development only.
package mqtt
