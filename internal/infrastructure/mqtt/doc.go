// Package mqtt provides MQTT client connectivity for the bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) on the bridge status topic
//   - Connection health monitoring
//
// # Architecture
//
// The bridge mirrors SmartThings device state onto retained MQTT topics
// and receives commands from subscribers (typically Home Assistant):
//
//	SmartThings API ↔ Bridge ↔ MQTT Broker ↔ Home Assistant
//
// The bridge status topic carries "online"/"offline" markers; the offline
// payload is registered as the connection's Last Will so consumers can
// tell an orderly stop from a crash only by timing, never by silence.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, mqtt.StatusConfig{
//	    Topic:   "smartthings/bridge/status",
//	    Online:  "online",
//	    Offline: "offline",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe("smartthings/+/set", 0,
//	    func(topic string, payload []byte) error {
//	        // handle command
//	        return nil
//	    })
package mqtt
