package status

import (
	"fmt"
	"html/template"
)

type pageData struct {
	Name     string
	Temp     string
	Humidity string
	Comfort  string
	Time     string
}

func newPageData(s Status) pageData {
	d := pageData{Name: s.Name, Temp: "--", Humidity: "--", Comfort: s.Comfort, Time: s.Time}
	if s.Temp != nil {
		d.Temp = fmt.Sprintf("%.1fC / %dF", *s.Temp, int(*s.Temp*9/5)+32)
	}
	if s.Humidity != nil {
		d.Humidity = fmt.Sprintf("%.1f%%", *s.Humidity)
	}
	return d
}

var page = template.Must(template.New("page").Parse(`<html>
<head>
  <script>
    window.onload = function() {
      var proto = location.protocol === "https:" ? "wss://" : "ws://";
      var ws = new WebSocket(proto + location.host + "/stream");
      ws.onmessage = function(event) {
        var s = JSON.parse(event.data);
        if (s.temp !== null && s.temp !== undefined) {
          document.getElementById("temp").innerText = s.temp.toFixed(1) + "C / " + Math.round(s.temp*9/5+32) + "F";
        }
        if (s.humidity !== null && s.humidity !== undefined) {
          document.getElementById("humi").innerText = s.humidity.toFixed(1) + "%";
        }
        document.getElementById("comfort").innerText = s.comfort;
        document.getElementById("time").innerText = s.time;
      };
    };
  </script>
  <style>
  div {
    margin: auto;
  }
  #comfort {
    font-size: 4em;
  }
  </style>
</head>
<body style="background-color: black;color: white">
  <p style="font-size: 4em;">{{.Name}}</p>
  <div style="width: 610px">
    <p style="font-size: 6em;"><span id="temp">{{.Temp}}</span><br /><span id="humi">{{.Humidity}}</span></p>
    <p id="comfort">{{.Comfort}}</p>
    <p id="time">{{.Time}}</p>
  </div>
</body>
</html>`))
