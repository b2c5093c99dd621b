package logging

import (
	"fmt"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"hyperv-facade/app/utils/intutils"
	"hyperv-facade/app/utils/stringutils"
	"hyperv-facade/config"
	"os"
	"strings"
)

const fileName = "hyperv-facade.log"

// Setup之前使用空日志，测试中各包可直接调用L()
var log = zap.NewNop()

var settingLevel = zapcore.InfoLevel

func Setup() {
	var coreArr []zapcore.Core
	//获取编码器
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder   //指定时间格式
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder //按级别显示，不需要颜色
	if config.G.Server.Log.EnableFullPath {
		encoderConfig.EncodeCaller = zapcore.FullCallerEncoder //显示完整文件路径
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	//日志级别
	level, err := zapcore.ParseLevel(config.G.Server.Log.Level)
	if err != nil {
		fmt.Printf("日志级别设置出错，使用默认级别: %s", zapcore.InfoLevel.String())
		level = zapcore.InfoLevel
	}
	settingLevel = level
	priority := zap.LevelEnablerFunc(func(lev zapcore.Level) bool {
		return lev >= level
	})

	fileWriteSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   stringutils.EPTThen(strings.TrimSuffix(config.G.Server.Log.Path, "/"), ".") + "/" + fileName, //文件夹不存在会自动创建
		MaxSize:    intutils.ZeroThen(config.G.Server.Log.MaxSize, 1),                                         //文件大小限制,单位MB
		MaxBackups: intutils.ZeroThen(config.G.Server.Log.MaxBackups, 10),                                     //最大保留日志文件数量
		MaxAge:     intutils.ZeroThen(config.G.Server.Log.MaxAge, 7),                                          //日志文件保留天数
		Compress:   false,
	})
	fileCore := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(fileWriteSyncer, zapcore.AddSync(os.Stdout)), priority)
	coreArr = append(coreArr, fileCore)
	log = zap.New(zapcore.NewTee(coreArr...), zap.AddCaller())
}

func L() *zap.SugaredLogger {
	return log.Sugar()
}

func IsDebug() bool {
	return settingLevel == zapcore.DebugLevel
}

func Sync() {
	err := log.Sync()
	if err != nil {
		fmt.Println(err)
		return
	}
}
